package feed

import (
	"github.com/KonishchevDmitry/changelog-rss/pkg/markup"
)

const (
	autocastChangelog = "https://raw.githubusercontent.com/FlatFilers/flatfile-plugins/main/plugins/autocast/CHANGELOG.md"
	changelogLink     = "https://github.com/Flatfilers/flatfile-changelog"
)

func flatfileLogo() *Image {
	return &Image{
		URL:  "https://mma.prnewswire.com/media/2152240/flatfile_logo_Logo.jpg",
		Link: "https://www.flatfile.com",
	}
}

// DefaultProfiles returns the built-in feeds used when no configuration file is given.
func DefaultProfiles() []Profile {
	return []Profile{{
		Name:        "rss-feed",
		Path:        "/rss-feed",
		Source:      autocastChangelog,
		Format:      PlainFormat,
		Headings:    markup.RenderH1,
		ChannelLink: changelogLink,
		Description: "Changelog for Flatfile",
	}, {
		Name:        "api-feed",
		Path:        "/api/feed",
		Source:      "https://raw.githubusercontent.com/Flatfilers/" + repoPlaceholder + "/CHANGELOG.md",
		Format:      RichFormat,
		Headings:    markup.StripH1,
		CORS:        true,
		ChannelLink: changelogLink,
		Description: "Keep track of every change to " + titlePlaceholder + ".",
		Image:       flatfileLogo(),
	}, {
		Name:        "api-rss-feed",
		Path:        "/api/rss-feed",
		Source:      autocastChangelog,
		Format:      RichFormat,
		Headings:    markup.StripH1,
		ChannelLink: changelogLink,
		Description: "Changelog for Flatfile",
		Image:       flatfileLogo(),
	}}
}
