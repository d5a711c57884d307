// Command client is the ignitekv CLI client: get/set/rm subcommands, each
// opening one connection, performing one round trip, and exiting. Shape
// follows original_source/src/bin/kvs-client.rs's get/set/rm subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iamNilotpal/ignitekv/internal/client"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ignitekv-client",
		Short: "Talk to an ignitekv server over TCP",
	}

	root.AddCommand(newGetCmd(), newSetCmd(), newRmCmd())
	return root
}

func newGetCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Get the string value of a given string key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Connect(addr)
			if err != nil {
				return err
			}
			defer c.Close()

			value, found, err := c.Get(args[0])
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("Key not found")
				return nil
			}
			fmt.Println(value)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", options.DefaultAddr, "IP:PORT of the server")
	return cmd
}

func newSetCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set the value of a string key to a string",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Connect(addr)
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Set(args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&addr, "addr", options.DefaultAddr, "IP:PORT of the server")
	return cmd
}

func newRmCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "rm KEY",
		Short: "Remove a given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Connect(addr)
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Remove(args[0])
		},
	}
	cmd.Flags().StringVar(&addr, "addr", options.DefaultAddr, "IP:PORT of the server")
	return cmd
}
