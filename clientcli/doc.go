// Package clientcli provides a client library for the signet gateway.
//
// It supports logging in, requesting presigned URLs and upload policies,
// and listing buckets. The package includes profile-based configuration
// for managing connections to multiple gateways.
//
// # Basic Usage
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:8080",
//		Username: "testuser",
//		Password: "testpass",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := client.Login(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	signed, err := client.PresignGet(ctx, clientcli.PresignOptions{
//		Bucket: "mybucket",
//		Key:    "docs/report.pdf",
//	})
//
// # Profile Configuration
//
// Use profiles to manage multiple gateway configurations:
//
//	configFile, err := clientcli.LoadConfigFile("~/.signet/config.yaml")
//	profile, err := configFile.GetProfile("production")
//	cfg := clientcli.ConfigFromProfile(profile)
package clientcli
