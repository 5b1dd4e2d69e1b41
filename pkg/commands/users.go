package commands

import (
	"context"
	"fmt"

	"github.com/tectrixdev/unplayit/pkg/auth"
	"github.com/urfave/cli/v2"
)

func createUser(c *cli.Context) error {
	database, err := openDatabase(context.Background(), c)
	if err != nil {
		return err
	}

	user, token, err := auth.NewUsers(database).Create(c.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("user: %s\nid: %d\ntoken: %s\n", user.Name, user.ID, token)
	return nil
}

func disableUser(c *cli.Context) error {
	database, err := openDatabase(context.Background(), c)
	if err != nil {
		return err
	}

	return database.SetUserDisabled(c.Args().First(), !c.Bool("enable"))
}

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:      "create-user",
		Usage:     "create a user and print its login token",
		ArgsUsage: "NAME",
		Action:    createUser,
		Flags:     append(databaseFlags(), GlobalFlags()...),
		Before:    Before,
	}
}

func disableUserCommand() *cli.Command {
	return &cli.Command{
		Name:      "disable-user",
		Usage:     "stop a user from logging in and registering",
		ArgsUsage: "NAME",
		Action:    disableUser,
		Flags: append(append(databaseFlags(), &cli.BoolFlag{
			Name:  "enable",
			Usage: "re-enable the user instead",
		}), GlobalFlags()...),
		Before: Before,
	}
}
