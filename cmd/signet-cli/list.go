package main

import (
	"context"
	"os"

	"github.com/sagarc03/signet/clientcli"
	"github.com/spf13/cobra"
)

var (
	listBucket string
	listPrefix string
	listLogin  bool
)

var listCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List objects in a bucket",
	Long: `List all objects in a bucket.

The gateway walks every page of the listing, so large buckets can take
a while. If no bucket is given, the gateway's configured default bucket
is used.

Examples:
  signet-cli list
  signet-cli list images/
  signet-cli list --bucket mybucket --prefix documents/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listBucket, "bucket", "b", "", "bucket name (default: gateway's configured bucket)")
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "filter by key prefix")
	listCmd.Flags().BoolVar(&listLogin, "login", false, "log in first and use a bearer token")
}

func runList(_ *cobra.Command, args []string) error {
	// Prefix can come from positional arg or flag
	prefix := listPrefix
	if len(args) > 0 {
		prefix = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	formatter := getFormatter()

	if listLogin {
		if err := client.Login(ctx); err != nil {
			_ = formatter.FormatError(os.Stderr, err)
			return err
		}
	}

	result, err := client.List(ctx, clientcli.ListOptions{
		Bucket: listBucket,
		Prefix: prefix,
	})
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	return formatter.FormatList(os.Stdout, &result)
}
