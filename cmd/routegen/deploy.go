package main

import (
	"context"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/routegen-dev/routegen/internal/config"
	"github.com/routegen-dev/routegen/internal/errors"
	"github.com/routegen-dev/routegen/pkg/router"
	"github.com/routegen-dev/routegen/pkg/upload"
)

func deployCmd() *cobra.Command {
	var (
		bucket string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish the generated route table to S3",
		Long: `Compile the route table and upload it to an S3 bucket.

Two objects are uploaded under the configured prefix: the generated
Go source and a manifest.json describing the table. Consumers poll
the manifest to detect new tables.

The deploy target comes from the deploy section of routegen.json:

  "deploy": {
    "bucket": "my-tables",
    "region": "us-east-1",
    "prefix": "myapp/"
  }

Examples:
  routegen deploy
  routegen deploy --bucket other-bucket --prefix staging/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(bucket, prefix)
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "S3 bucket (default from routegen.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from routegen.json)")

	return cmd
}

func runDeploy(bucket, prefix string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if bucket != "" {
		cfg.Deploy.Bucket = bucket
	}
	if prefix != "" {
		cfg.Deploy.Prefix = prefix
	}
	if !cfg.HasDeployTarget() {
		return errors.New("R004").
			WithSuggestion("Add a deploy.bucket to routegen.json or pass --bucket")
	}

	routesDir := cfg.RoutesPath()
	info("Compiling %s...", routesDir)

	table, err := router.Compile(os.DirFS(routesDir), nil)
	if err != nil {
		return err
	}

	src, err := router.NewGenerator(table, cfg.Package).Generate()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Deploy.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Deploy.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return errors.New("R203").
			WithDetail("Could not load AWS credentials").
			Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg)
	pub := upload.NewPublisher(client, cfg.Deploy.Bucket, cfg.Deploy.Prefix)

	info("Uploading to s3://%s/%s...", cfg.Deploy.Bucket, cfg.Deploy.Prefix)

	if err := pub.PublishTable(ctx, src, table); err != nil {
		return errors.New("R203").
			WithDetail("Upload to " + cfg.Deploy.Bucket + " failed").
			Wrap(err)
	}

	assets, err := pub.PublishDir(ctx, cfg.PublicPath())
	if err != nil {
		return errors.New("R203").
			WithDetail("Asset upload to " + cfg.Deploy.Bucket + " failed").
			Wrap(err)
	}
	if assets > 0 {
		info("Uploaded %d public assets", assets)
	}

	success("Published %d modules to s3://%s/%s", len(table.Modules), cfg.Deploy.Bucket, cfg.Deploy.Prefix)
	return nil
}
