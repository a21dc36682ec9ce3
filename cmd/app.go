package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokenlottery/api"
	"tokenlottery/config"
	"tokenlottery/database"
	"tokenlottery/infrastructure/oracle"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	log "github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"
)

// NewApp builds the command line interface
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tokenlottery"
	app.Usage = "Slot-windowed token lottery with commit-reveal randomness"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.Action = runAction

	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "Serve the lottery HTTP API",
			Action: runAction,
		},
		{
			Name:  "migrate",
			Usage: "Manage database migrations",
			Subcommands: []cli.Command{
				{
					Name:   "up",
					Usage:  "Apply all pending migrations",
					Action: migrateUpAction,
				},
				{
					Name:      "down",
					Usage:     "Roll back migrations",
					ArgsUsage: "[steps]",
					Flags: []cli.Flag{
						cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
					},
					Action: migrateDownAction,
				},
				{
					Name:   "status",
					Usage:  "Show the current migration version",
					Action: migrateStatusAction,
				},
			},
		},
		{
			Name:  "oracle",
			Usage: "Operate a development randomness beacon",
			Subcommands: []cli.Command{
				{
					Name:   "keygen",
					Usage:  "Generate a beacon key pair",
					Action: oracleKeygenAction,
				},
				{
					Name:  "sign",
					Usage: "Derive a record address and its reveal signature",
					Flags: []cli.Flag{
						cli.StringFlag{Name: "key", EnvVar: "BEACON_PRIVATE_KEY", Usage: "hex beacon private key"},
						cli.Int64Flag{Name: "seed-slot", Usage: "slot the seed was published at"},
						cli.StringFlag{Name: "seed", Usage: "hex seed bytes"},
					},
					Action: oracleSignAction,
				},
			},
		},
		{
			Name:  "token",
			Usage: "Issue a caller token for an address",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "address", Usage: "hex caller address"},
				cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
			},
			Action: tokenAction,
		},
	}

	return app
}

func runAction(c *cli.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	return Run(ctx)
}

func migrationURL() string {
	cfg := config.Get()
	return database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
}

func migrateUpAction(c *cli.Context) error {
	return database.MigrateUp(migrationURL())
}

func migrateDownAction(c *cli.Context) error {
	steps := c.Int("steps")
	if arg := c.Args().First(); arg != "" {
		if _, err := fmt.Sscanf(arg, "%d", &steps); err != nil {
			return fmt.Errorf("invalid steps value %q: %w", arg, err)
		}
	}
	return database.MigrateDown(migrationURL(), steps)
}

func migrateStatusAction(c *cli.Context) error {
	return database.MigrateStatus(migrationURL())
}

func oracleKeygenAction(c *cli.Context) error {
	beacon := oracle.NewBeacon()

	privateKey, err := beacon.PrivateKey()
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}
	publicKey, err := beacon.PublicKey()
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "private_key = %s\npublic_key  = %s\n", hexutil.Encode(privateKey), hexutil.Encode(publicKey))
	return nil
}

func oracleSignAction(c *cli.Context) error {
	privateKey, err := hexutil.Decode(c.String("key"))
	if err != nil {
		return fmt.Errorf("invalid --key: %w", err)
	}
	seed, err := hexutil.Decode(c.String("seed"))
	if err != nil {
		return fmt.Errorf("invalid --seed: %w", err)
	}

	beacon, err := oracle.LoadBeacon(privateKey)
	if err != nil {
		return err
	}

	record, err := beacon.NewRecord(c.Int64("seed-slot"), seed)
	if err != nil {
		return err
	}
	signature, err := beacon.Sign(record)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "record    = %s\nsignature = %s\n", record.Address.Hex(), hexutil.Encode(signature))
	return nil
}

func tokenAction(c *cli.Context) error {
	address := c.String("address")
	if !common.IsHexAddress(address) {
		return fmt.Errorf("--address must be a hex address")
	}

	cfg := config.Get()
	token, err := api.NewAuthenticator(cfg.JWTSecret, cfg.AdminAddress).IssueToken(common.HexToAddress(address), c.Duration("ttl"))
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, token)
	return nil
}
