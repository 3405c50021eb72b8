package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/pkgdocs/internal/config"
	ferrors "git.home.luguber.info/inful/pkgdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgdocs/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	OutputPath      string `name:"output-path" short:"o" env:"INPUT_OUTPUT_PATH" help:"Generated site directory" default:"docs" placeholder:"DIR"`
	HostingBasePath string `name:"hosting-base-path" env:"INPUT_HOSTING_BASE_PATH" help:"Key prefix; matches the URL path prefix the site is served under" placeholder:"PATH"`
	Endpoint        string `name:"endpoint" env:"PKGDOCS_S3_ENDPOINT" help:"S3 endpoint host[:port]" required:""`
	Bucket          string `name:"bucket" env:"PKGDOCS_S3_BUCKET" help:"Destination bucket" required:""`
	Region          string `name:"region" env:"PKGDOCS_S3_REGION" help:"Bucket region" default:"us-east-1"`
	AccessKey       string `name:"access-key" env:"PKGDOCS_S3_ACCESS_KEY" help:"Access key ID"`
	SecretKey       string `name:"secret-key" env:"PKGDOCS_S3_SECRET_KEY" help:"Secret access key"`
	Insecure        bool   `name:"insecure" help:"Use plain HTTP"`

	store publish.ObjectStore `kong:"-"`
}

func (p *PublishCmd) Run(global *Global, _ *CLI) error {
	cwd, err := global.cwd()
	if err != nil {
		return err
	}
	siteRoot := p.OutputPath
	if !filepath.IsAbs(siteRoot) {
		siteRoot = filepath.Join(cwd, siteRoot)
	}

	store := p.store
	if store == nil {
		s3, err := publish.NewS3Store(publish.S3Config{
			Endpoint:  p.Endpoint,
			Region:    p.Region,
			AccessKey: p.AccessKey,
			SecretKey: p.SecretKey,
			Bucket:    p.Bucket,
			UseSSL:    !p.Insecure,
		})
		if err != nil {
			return ferrors.ValidationError("invalid object storage settings").
				WithCause(err).
				WithContext("endpoint", p.Endpoint).
				Build()
		}
		store = s3
	}

	_, err = publish.NewPublisher(store).Publish(global.context(), siteRoot, config.TrimHostingBasePath(p.HostingBasePath))
	return err
}
