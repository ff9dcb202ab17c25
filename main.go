package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli"

	"github.com/rabbitmq/bintray-go/pkg/bintray"
	"github.com/rabbitmq/bintray-go/pkg/debian"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	app := cli.NewApp()
	app.Name = "bintray-wait"
	app.Usage = "wait until a package repository has caught up with an upload"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config, c",
			Value: "bintray.yml",
			Usage: "Configuration file path",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}

	contentFlags := []cli.Flag{
		&cli.StringFlag{Name: "subject", Usage: "User or organization owning the repository"},
		&cli.StringFlag{Name: "repository", Usage: "Repository name"},
		&cli.StringFlag{Name: "package", Usage: "Package name"},
		&cli.StringFlag{Name: "version", Usage: "Package version"},
		&cli.StringFlag{Name: "path", Usage: "Path of the uploaded file within the repository"},
		&cli.StringFlag{Name: "file, f", Usage: "Local copy of the uploaded file, used to compute checksums"},
		&cli.DurationFlag{Name: "timeout", Value: 15 * time.Minute, Usage: "Overall wait budget"},
	}

	app.Commands = []cli.Command{
		{
			Name:  "availability",
			Usage: "wait until the download mirrors serve the upload",
			Flags: contentFlags,
			Action: func(c *cli.Context) error {
				return waitAvailability(ctx, c)
			},
		},
		{
			Name:  "indexation",
			Usage: "wait until the repository index lists the upload",
			Flags: append(contentFlags,
				&cli.StringSliceFlag{Name: "distribution", Usage: "Debian distribution (repeatable)"},
				&cli.StringSliceFlag{Name: "component", Usage: "Debian component (repeatable)"},
				&cli.StringSliceFlag{Name: "architecture", Usage: "Debian architecture (repeatable)"},
			),
			Action: func(c *cli.Context) error {
				return waitIndexation(ctx, c)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("wait failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setupLogging(c *cli.Context) {
	level := slog.LevelInfo
	if c.GlobalBool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	slog.SetDefault(logger)
}

func buildContent(c *cli.Context) (*bintray.Content, error) {
	setupLogging(c)

	for _, flag := range []string{"subject", "repository", "package", "version", "path"} {
		if c.String(flag) == "" {
			return nil, fmt.Errorf("--%s is required", flag)
		}
	}

	cfg, err := bintray.LoadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	client, err := bintray.NewClient(*cfg)
	if err != nil {
		return nil, err
	}

	content := client.Content(
		c.String("subject"),
		c.String("repository"),
		c.String("package"),
		c.String("version"),
		c.String("path"))

	if fn := c.String("file"); fn != "" {
		checksum, err := bintray.ChecksumFromFile(fn)
		if err != nil {
			return nil, err
		}
		content.WithChecksum(checksum)
	}
	return content, nil
}

func waitAvailability(ctx context.Context, c *cli.Context) error {
	content, err := buildContent(c)
	if err != nil {
		return err
	}

	checksum, err := content.WaitForAvailability(ctx, c.Duration("timeout"))
	if err != nil {
		return err
	}
	fmt.Println(checksum.SHA256Hex())
	return nil
}

func waitIndexation(ctx context.Context, c *cli.Context) error {
	content, err := buildContent(c)
	if err != nil {
		return err
	}

	architectures := c.StringSlice("architecture")
	if len(architectures) == 0 {
		if arch := architectureFromDeb(c.String("file")); arch != "" {
			slog.Info("architecture read from package", slog.String("architecture", arch))
			architectures = []string{arch}
		}
	}

	content.
		WithDebianDistributions(c.StringSlice("distribution")...).
		WithDebianComponents(c.StringSlice("component")...).
		WithDebianArchitectures(architectures...)

	return content.WaitForIndexation(ctx, c.Duration("timeout"))
}

// architectureFromDeb reads the Architecture field from a local .deb, so the
// flag can be omitted when waiting on a Debian upload.
func architectureFromDeb(fn string) string {
	if fn == "" || !strings.HasSuffix(fn, ".deb") {
		return ""
	}
	graph, err := debian.ParagraphFromDebFile(fn)
	if err != nil || graph == nil {
		return ""
	}
	return (*graph)["Architecture"]
}
