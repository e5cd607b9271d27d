package seedfile

// Entry is a single bookmark entry in the seed YAML.
type Entry struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// SeedConfig is the root structure of the seed file: a flat list of
// bookmarks.
type SeedConfig []Entry
