package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mxmauro/cryptoservice"
	"github.com/mxmauro/cryptoservice/crypto/keyshares"
	"github.com/mxmauro/cryptoservice/logger"
)

const version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cryptoservice"
	app.Usage = "Encrypt and decrypt JSON values as base64 text"
	app.Version = version
	app.Flags = getFlags()
	app.Commands = []cli.Command{
		{
			Name:      "encrypt",
			Usage:     "serialize and encrypt a JSON value",
			ArgsUsage: "[JSON]",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "sequence, s",
					Usage: "treat the value as a sequence and sort object keys",
				},
			},
			Action: encryptAction,
		},
		{
			Name:      "decrypt",
			Usage:     "decrypt a base64 ciphertext into its JSON value",
			ArgsUsage: "[BASE64]",
			Action:    decryptAction,
		},
		{
			Name:      "split-key",
			Usage:     "split a symmetric key into base64 encoded shares",
			ArgsUsage: "KEY",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "shares, n",
					Usage: "number of shares to create",
					Value: 3,
				},
				cli.IntFlag{
					Name:  "threshold, t",
					Usage: "number of shares needed to rebuild the key",
					Value: 2,
				},
			},
			Action: splitKeyAction,
		},
	}
	return app
}

func getFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load configuration from `FILE`",
		},
		cli.StringFlag{
			Name:  "env-file, e",
			Usage: "load CRYPTOSERVICE_ environment variables from `FILE`",
		},
		cli.StringFlag{
			Name:  "level, l",
			Usage: "logging level [debug|info|warn|error]",
		},
	}
}

// -----------------------------------------------------------------------------

func encryptAction(c *cli.Context) error {
	s, err := newService(c)
	if err != nil {
		return err
	}

	input, err := readInput(c)
	if err != nil {
		return err
	}

	var encryptedText string
	if c.Bool("sequence") {
		var values []json.RawMessage

		if err = json.Unmarshal(input, &values); err != nil {
			return errors.Wrap(err, "input is not a JSON array")
		}
		encryptedText, err = cryptoservice.EncryptSequence(s, values)
	} else {
		if !json.Valid(input) {
			return errors.New("input is not valid JSON")
		}
		encryptedText, err = cryptoservice.Encrypt(s, json.RawMessage(input))
	}
	if err != nil {
		return errors.Wrap(err, "encryption failed")
	}

	_, err = fmt.Fprintln(c.App.Writer, encryptedText)
	return err
}

func decryptAction(c *cli.Context) error {
	s, err := newService(c)
	if err != nil {
		return err
	}

	input, err := readInput(c)
	if err != nil {
		return err
	}

	value, err := cryptoservice.Decrypt[json.RawMessage](s, string(input))
	if err != nil {
		return errors.Wrap(err, "decryption failed")
	}

	_, err = fmt.Fprintln(c.App.Writer, string(value))
	return err
}

func splitKeyAction(c *cli.Context) error {
	key := c.Args().First()
	if len(key) == 0 {
		return errors.New("a key is required")
	}

	shares, err := keyshares.Split([]byte(key), c.Int("shares"), c.Int("threshold"))
	if err != nil {
		return errors.Wrap(err, "unable to split key")
	}
	for _, share := range shares {
		if _, err = fmt.Fprintln(c.App.Writer, base64.StdEncoding.EncodeToString(share)); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func newService(c *cli.Context) (*cryptoservice.Service, error) {
	// Variables already present in the environment take precedence over the file.
	if envFile := c.GlobalString("env-file"); len(envFile) > 0 {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrap(err, "unable to load environment file")
		}
	}

	config, err := cryptoservice.NewConfig(c.GlobalString("config"))
	if err != nil {
		return nil, errors.Wrap(err, "unable to load configuration")
	}
	if c.GlobalIsSet("level") {
		level, err := logger.GetLogLevel(c.GlobalString("level"))
		if err != nil {
			return nil, err
		}
		config.LogLevel = level
	}

	s, err := config.NewService()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create service")
	}
	return s, nil
}

// readInput returns the first argument, or standard input when none is given.
func readInput(c *cli.Context) ([]byte, error) {
	if c.NArg() > 0 {
		return []byte(strings.TrimSpace(c.Args().First())), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read standard input")
	}
	return []byte(strings.TrimSpace(string(data))), nil
}
