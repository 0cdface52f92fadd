package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/darasa/core/settings"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sqlx.DB
	settingsSvc *settings.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|up-by-one|up-to|down|down-to|redo|reset|status|version - run database migrations")
	fmt.Println("  apikey -guild GUILD_ID - set the guild's gateway API key")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	apikeyCmd := flag.NewFlagSet("apikey", flag.ExitOnError)
	apikeyGuild := apikeyCmd.Int64("guild", 0, "The guild ID. The API key will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "apikey":
		if err := apikeyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *apikeyGuild == 0 {
			apikeyCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter API key:")
		key, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(key) == 0 {
			apikeyCmd.Usage()
			return errHelp
		}
		return cli.setAPIKey(*apikeyGuild, string(key))
	default:
		cli.printUsage()
		return errHelp
	}
}
