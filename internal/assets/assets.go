package assets

var defaultLoader = NewEmbeddedLoader()

// DefaultPage returns the built-in page assets.
func DefaultPage() (*Page, error) {
	return LoadPage(defaultLoader)
}
