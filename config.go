package cryptoservice

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mxmauro/cryptoservice/crypto/ciphers"
	"github.com/mxmauro/cryptoservice/crypto/ciphers/rsa_oaep"
	"github.com/mxmauro/cryptoservice/crypto/keyshares"
	"github.com/mxmauro/cryptoservice/logger"
	"github.com/mxmauro/cryptoservice/models"
	"github.com/mxmauro/cryptoservice/serializers"
	"github.com/mxmauro/cryptoservice/util"
)

// -----------------------------------------------------------------------------

// DefaultEngine is the cipher engine used if one is not specified.
const DefaultEngine = ciphers.EngineAesCbc

const envPrefix = "CRYPTOSERVICE"

// -----------------------------------------------------------------------------

// AESConfig contains the settings of the symmetric engine.
type AESConfig struct {
	Key       string
	IV        string
	RandomIV  bool
	KeyShares []string
}

// RSAConfig contains the settings of the asymmetric engine.
type RSAConfig struct {
	PublicKey      string
	PublicKeyFile  string
	PrivateKey     string
	PrivateKeyFile string
	KeyBits        int
	Hash           crypto.Hash
}

// Config contains all settings needed to build an encryption service.
type Config struct {
	Engine   string
	LogLevel uint32
	AES      AESConfig
	RSA      RSAConfig
	SortKeys bool
}

// -----------------------------------------------------------------------------

// NewDefaultConfig creates a new Config with default settings.
func NewDefaultConfig() *Config {
	config := &Config{
		Engine: DefaultEngine,
	}
	config.LogLevel = uint32(log.InfoLevel)
	config.RSA.KeyBits = rsa_oaep.DefaultKeyBits
	config.RSA.Hash = rsa_oaep.DefaultHash
	return config
}

// NewConfig creates a new Config with default settings and applies any settings from the given
// configuration file and from CRYPTOSERVICE_ prefixed environment variables.
func NewConfig(configFile string) (*Config, error) {
	v := newViper()
	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFoundErr viper.ConfigFileNotFoundError

			if !errors.As(err, &notFoundErr) && !errors.Is(err, fs.ErrNotExist) {
				return nil, util.NewClassifiedError(ErrInvalidParameters, err, "unable to read configuration")
			}
		}
	}

	config := NewDefaultConfig()

	if v.IsSet("engine") {
		config.Engine = strings.ToLower(v.GetString("engine"))
	}

	if v.IsSet("log.level") {
		levelInt, err := logger.GetLogLevel(v.GetString("log.level"))
		if err != nil {
			return nil, util.NewClassifiedError(ErrInvalidParameters, err, "invalid configuration")
		}
		config.LogLevel = levelInt
	}

	if v.IsSet("serializer.sort_keys") {
		config.SortKeys = v.GetBool("serializer.sort_keys")
	}

	parseAESConfig(&config.AES, v)

	if err := parseRSAConfig(&config.RSA, v); err != nil {
		return nil, util.NewClassifiedError(ErrInvalidParameters, err, "invalid configuration")
	}

	// Done
	return config, nil
}

// NewService builds the cipher engine described by the configuration and wraps it in a Service.
func (c *Config) NewService() (*Service, error) {
	params, err := c.cipherParameters()
	if err != nil {
		return nil, err
	}
	defer util.SafeZeroMem(params.Key)

	cipher, err := ciphers.NewCipher(c.Engine, params)
	if err != nil {
		if errors.Is(err, ciphers.ErrEngineNotSupported) {
			err = util.NewClassifiedError(ErrInvalidParameters, err, fmt.Sprintf("unable to use engine %q", c.Engine))
		}
		return nil, err
	}

	opts := Options{
		Cipher: cipher,
		Engine: c.Engine,
		Logger: logger.NewLogger(c.LogLevel),
	}
	if c.SortKeys {
		opts.Serializer = serializers.CanonicalJSON{}
	}
	return New(opts)
}

func (c *Config) cipherParameters() (models.CipherParameters, error) {
	params := models.CipherParameters{
		IV:       []byte(c.AES.IV),
		RandomIV: c.AES.RandomIV,
		KeyBits:  c.RSA.KeyBits,
		Hash:     c.RSA.Hash,
	}

	switch c.Engine {
	case ciphers.EngineRsaOaep:
		var err error

		params.PublicKey, err = readKey(c.RSA.PublicKey, c.RSA.PublicKeyFile)
		if err == nil {
			params.PrivateKey, err = readKey(c.RSA.PrivateKey, c.RSA.PrivateKeyFile)
		}
		if err != nil {
			return models.CipherParameters{}, util.NewClassifiedError(ErrInvalidParameters, err, "unable to load rsa key")
		}

	default:
		if len(c.AES.KeyShares) > 0 {
			key, err := combineKeyShares(c.AES.KeyShares)
			if err != nil {
				return models.CipherParameters{}, err
			}
			params.Key = key
		} else {
			params.Key = []byte(c.AES.Key)
		}
	}

	// Done
	return params, nil
}

// -----------------------------------------------------------------------------

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func parseAESConfig(config *AESConfig, v *viper.Viper) {
	if v.IsSet("aes.key") {
		config.Key = v.GetString("aes.key")
	}

	if v.IsSet("aes.iv") {
		config.IV = v.GetString("aes.iv")
	}

	if v.IsSet("aes.random_iv") {
		config.RandomIV = v.GetBool("aes.random_iv")
	}

	if v.IsSet("aes.key_shares") {
		config.KeyShares = v.GetStringSlice("aes.key_shares")
	}
}

func parseRSAConfig(config *RSAConfig, v *viper.Viper) error {
	if v.IsSet("rsa.public_key") {
		config.PublicKey = v.GetString("rsa.public_key")
	}

	if v.IsSet("rsa.public_key_file") {
		config.PublicKeyFile = v.GetString("rsa.public_key_file")
	}

	if v.IsSet("rsa.private_key") {
		config.PrivateKey = v.GetString("rsa.private_key")
	}

	if v.IsSet("rsa.private_key_file") {
		config.PrivateKeyFile = v.GetString("rsa.private_key_file")
	}

	if v.IsSet("rsa.key_bits") {
		config.KeyBits = v.GetInt("rsa.key_bits")
		if config.KeyBits <= 0 {
			return fmt.Errorf("invalid rsa.key_bits setting %d", config.KeyBits)
		}
	}

	if v.IsSet("rsa.hash") {
		h, err := GetHash(v.GetString("rsa.hash"))
		if err != nil {
			return err
		}
		config.Hash = h
	}

	return nil
}

// GetHash converts the hash name to its corresponding crypto.Hash value. It returns an error if
// the name is not supported.
func GetHash(name string) (crypto.Hash, error) {
	var h crypto.Hash
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "sha1":
		h = crypto.SHA1
	case "sha256":
		h = crypto.SHA256
	case "sha384":
		h = crypto.SHA384
	case "sha512":
		h = crypto.SHA512
	default:
		return 0, fmt.Errorf("invalid rsa.hash setting %q", name)
	}
	return h, nil
}

func readKey(inline string, file string) (string, error) {
	if len(inline) > 0 || len(file) == 0 {
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func combineKeyShares(encodedShares []string) ([]byte, error) {
	shares := make([][]byte, 0, len(encodedShares))
	defer func() {
		util.SafeZeroMemArray(shares)
	}()

	for idx, encoded := range encodedShares {
		share, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return nil, util.NewClassifiedError(ErrInvalidParameters, err, fmt.Sprintf("key share #%d is not valid base64", idx+1))
		}
		shares = append(shares, share)
	}
	return keyshares.Combine(shares)
}
