package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/osio"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"

	osioGcs "github.com/airbusgeo/osio/gcs"
	osioS3 "github.com/airbusgeo/osio/s3"
	aws3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type GDALConfig struct {
	BlockSize       string
	NumCachedBlocks int
	WithGCS         bool
	WithS3          bool
	AwsRegion       string
	AwsEndpoint     string
	AwsCredentials  string
}

// GDALConfigFlags registers the GDAL configuration flags on fs
func GDALConfigFlags(fs *flag.FlagSet) *GDALConfig {
	gdalConfig := GDALConfig{}
	fs.StringVar(&gdalConfig.BlockSize, "gdalBlockSize", "1Mb", "gdal blocksize value (default 1Mb)")
	fs.IntVar(&gdalConfig.NumCachedBlocks, "gdalNumCachedBlocks", 500, "gdal blockcache value (default 500)")
	fs.BoolVar(&gdalConfig.WithGCS, "with-gcs", false, "configure GDAL to read gs:// files (may need authentication)")
	fs.BoolVar(&gdalConfig.WithS3, "with-s3", false, "configure GDAL to read s3:// files (may need authentication)")
	fs.StringVar(&gdalConfig.AwsRegion, "aws-region", "", "define aws_region for GDAL to use s3 storage (--with-s3)")
	fs.StringVar(&gdalConfig.AwsEndpoint, "aws-endpoint", "", "define aws_endpoint for GDAL to use s3 storage (--with-s3)")
	fs.StringVar(&gdalConfig.AwsCredentials, "aws-shared-credentials-file", "", "define aws_shared_credentials_file for GDAL to use s3 storage (--with-s3)")
	return &gdalConfig
}

// AWSConfig loads the aws configuration, overridden by the region, endpoint and credentials of the GDALConfig
func (gdalConfig *GDALConfig) AWSConfig(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsConfig.LoadOptions) error
	if gdalConfig.AwsCredentials != "" {
		opts = append(opts, awsConfig.WithSharedCredentialsFiles([]string{gdalConfig.AwsCredentials}))
	}
	if gdalConfig.AwsRegion != "" {
		opts = append(opts, awsConfig.WithRegion(gdalConfig.AwsRegion))
	}
	if gdalConfig.AwsEndpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				PartitionID:       "aws",
				URL:               gdalConfig.AwsEndpoint,
				SigningRegion:     region,
				HostnameImmutable: true,
			}, nil
		})
		opts = append(opts, awsConfig.WithEndpointResolverWithOptions(resolver))
	}
	return awsConfig.LoadDefaultConfig(ctx, opts...)
}

// InitGDAL registers the GDAL drivers and the gs:// and s3:// VSI handlers
func InitGDAL(ctx context.Context, gdalConfig *GDALConfig) error {
	os.Setenv("GDAL_DISABLE_READDIR_ON_OPEN", "EMPTY_DIR")

	godal.RegisterAll()

	if gdalConfig.WithGCS {
		gcsHandle, err := osioGcs.Handle(ctx)
		if err != nil {
			return fmt.Errorf("gcs handle: %w", err)
		}
		gcsa, err := osio.NewAdapter(gcsHandle,
			osio.BlockSize(gdalConfig.BlockSize),
			osio.NumCachedBlocks(gdalConfig.NumCachedBlocks))
		if err != nil {
			return err
		}
		if err = godal.RegisterVSIHandler("gs://", gcsa); err != nil {
			return err
		}
	}

	if gdalConfig.WithS3 {
		config, err := gdalConfig.AWSConfig(ctx)
		if err != nil {
			return fmt.Errorf("aws config: %w", err)
		}
		osioS3Handle, err := osioS3.Handle(ctx, osioS3.S3Client(aws3.NewFromConfig(config)))
		if err != nil {
			return fmt.Errorf("s3 handle: %w", err)
		}
		s3Adapter, err := osio.NewAdapter(osioS3Handle,
			osio.BlockSize(gdalConfig.BlockSize),
			osio.NumCachedBlocks(gdalConfig.NumCachedBlocks))
		if err != nil {
			return err
		}
		if err = godal.RegisterVSIHandler("s3://", s3Adapter); err != nil {
			return err
		}
	}

	return nil
}
