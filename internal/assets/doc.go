// Package assets provides the web page template, its stylesheet, and the
// sample document shown on first load.
//
// # Loaders
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed copies built into the binary
//	    ├── FilesystemLoader  - a directory on disk (assets.basePath)
//	    └── AssetResolver     - disk first, embedded as fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── templates/{name}.html   # html/template page
//	├── styles/{name}.css       # inlined into the page
//	└── samples/{name}.md       # initial editor content
//
// Names never contain separators or dots, and FilesystemLoader refuses
// paths that resolve outside basePath.
package assets
