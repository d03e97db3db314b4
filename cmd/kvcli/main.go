// cmd/kvcli is the CLI client for a causalkv node, built with Cobra —
// same framework and --server/--timeout flag shape as the teacher's
// cmd/client, pointed at this node's write/read/health surface instead of
// the teacher's REST-ful /kv routes.
//
// Usage:
//
//	kvcli write mykey "hello world"     --server http://localhost:5000
//	kvcli read mykey                    --server http://localhost:5000
//	kvcli health                        --server http://localhost:5000
//	kvcli chain k1=v1 k2=v2 k3=v3        --server http://localhost:5000
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppriyankuu/causalkv/internal/apiclient"
	"github.com/ppriyankuu/causalkv/internal/clock"
)

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "kvcli",
		Short: "CLI client for a causalkv node",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"http://localhost:5000", "causalkv node address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"HTTP request timeout")

	root.AddCommand(writeCmd(), readCmd(), healthCmd(), chainCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <key> <value>",
		Short: "Write a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := apiclient.New(serverAddr, timeout)
			resp, err := c.Write(context.Background(), args[0], args[1], nil)
			if err != nil {
				return err
			}
			return prettyPrint(resp)
		},
	}
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <key>",
		Short: "Read a value by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := apiclient.New(serverAddr, timeout)
			resp, err := c.Read(context.Background(), args[0])
			if err != nil {
				return err
			}
			return prettyPrint(resp)
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check node liveness and its current clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := apiclient.New(serverAddr, timeout)
			resp, err := c.Health(context.Background())
			if err != nil {
				return err
			}
			return prettyPrint(resp)
		},
	}
}

// chainCmd demonstrates causal read-your-writes (spec.md §8, property 5):
// each write's returned timestamp is threaded into the context of the
// next write, so the chain is observed in this exact order at every node
// — the same thing the original Python reference's client exercised by
// hand, one write at a time against a single node.
func chainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain <key1>=<val1> [<key2>=<val2> ...]",
		Short: "Write a sequence of key=value pairs, each causally dependent on the last",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := apiclient.New(serverAddr, timeout)

			var context clock.VectorClock
			for _, arg := range args {
				kv := strings.SplitN(arg, "=", 2)
				if len(kv) != 2 {
					return fmt.Errorf("invalid pair %q: expected key=value", arg)
				}

				resp, err := c.Write(cmd.Context(), kv[0], kv[1], context)
				if err != nil {
					return err
				}
				fmt.Printf("wrote %s=%s, clock=%v\n", kv[0], kv[1], resp.Timestamp)
				context = resp.Timestamp
			}
			return nil
		},
	}
}

func prettyPrint(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
