package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sagarc03/signet/clientcli"
	"github.com/spf13/cobra"
)

var (
	presignBucket     string
	presignExpiration int
	presignLogin      bool
)

var presignCmd = &cobra.Command{
	Use:   "presign <op> <key>",
	Short: "Request a presigned URL from the gateway",
	Long: `Request a presigned URL for an object operation.

The operation must be one of: get, put, post, delete.
"post" returns an upload policy (URL plus form fields) instead of a
plain URL.

Examples:
  signet-cli presign get docs/report.pdf --bucket mybucket
  signet-cli presign put uploads/photo.jpg --bucket mybucket --expiration 600
  signet-cli presign post uploads/photo.jpg --bucket mybucket
  signet-cli presign delete stale/old.log --bucket mybucket`,
	Args: cobra.ExactArgs(2),
	RunE: runPresign,
}

func init() {
	presignCmd.Flags().StringVarP(&presignBucket, "bucket", "b", "", "bucket name")
	presignCmd.Flags().IntVarP(&presignExpiration, "expiration", "e", 0, "URL lifetime in seconds (default: server default)")
	presignCmd.Flags().BoolVar(&presignLogin, "login", false, "log in first and use a bearer token")
}

func runPresign(_ *cobra.Command, args []string) error {
	op := clientcli.PresignOp(args[0])
	switch op {
	case clientcli.OpGet, clientcli.OpPut, clientcli.OpPost, clientcli.OpDelete:
	default:
		return fmt.Errorf("unknown operation %q: must be get, put, post, or delete", args[0])
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	formatter := getFormatter()

	if presignLogin {
		if err := client.Login(ctx); err != nil {
			_ = formatter.FormatError(os.Stderr, err)
			return err
		}
	}

	opts := clientcli.PresignOptions{
		Bucket:     presignBucket,
		Key:        args[1],
		Expiration: presignExpiration,
	}

	if op == clientcli.OpPost {
		result, err := client.PresignPost(ctx, opts)
		if err != nil {
			_ = formatter.FormatError(os.Stderr, err)
			return err
		}
		return formatter.FormatPostPolicy(os.Stdout, &result)
	}

	result, err := client.Presign(ctx, op, opts)
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}
	return formatter.FormatPresign(os.Stdout, op, &result)
}
