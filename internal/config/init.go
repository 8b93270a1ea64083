package config

import (
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const exampleConfig = `# sitebuilder configuration
# Values may reference environment variables as ${VAR}.

# development | production (ENV=PROD in the environment selects production)
mode: development

# Origin used for absolute sitemap URLs and the robots.txt Sitemap line.
site_url: ${SITE_URL}

# Third-party form URL substituted as {{ formEndpoint }} on the home page.
form_endpoint: ${FORM_ENDPOINT}

# Number of posts listed on the home page.
latest_posts: 3

# Uncomment to override the link prefix derived from the output directory.
# base_path: /preview

paths:
  output: dist
  templates: templates
  static: static
  pages: config/pages.json
  posts: content/posts
  projects: content/projects
  home: index.html
  about: about.html

markdown:
  highlight: false
  highlight_style: github
`

// Init writes an example configuration file. An existing file is kept unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot write configuration file").
			WithContext("path", path).
			Build()
	}
	return nil
}
