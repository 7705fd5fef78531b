package derive

import (
	"path"
	"sort"
	"strings"
)

// specialFilenames maps extension-less well-known filenames
// (lowercased) to canonical language names.
var specialFilenames = map[string]string{
	"dockerfile":     "Dockerfile",
	"makefile":       "Makefile",
	"cmakelists.txt": "CMake",
	"gemfile":        "Ruby",
	"rakefile":       "Ruby",
	"podfile":        "Ruby",
	"vagrantfile":    "Ruby",
	"jenkinsfile":    "Groovy",
}

// ignoredExtensions are media, archives, locks, binaries, VCS
// files, and editor configs that never map to a language.
var ignoredExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "svg": {},
	"ico": {}, "webp": {}, "bmp": {},
	"mp3": {}, "mp4": {}, "wav": {}, "mov": {}, "avi": {},
	"zip": {}, "tar": {}, "gz": {}, "bz2": {}, "rar": {}, "7z": {},
	"lock": {},
	"bin": {}, "exe": {}, "dll": {}, "so": {}, "dylib": {},
	"o": {}, "a": {}, "jar": {}, "class": {}, "pyc": {}, "wasm": {},
	"gitignore": {}, "gitattributes": {}, "gitmodules": {},
	"editorconfig": {}, "ds_store": {},
	"pdf": {}, "woff": {}, "woff2": {}, "ttf": {}, "eot": {}, "otf": {},
	"log": {}, "tmp": {}, "cache": {}, "map": {}, "min": {},
}

var extensionLanguages = map[string]string{
	"go":     "Go",
	"js":     "JavaScript",
	"jsx":    "JavaScript",
	"mjs":    "JavaScript",
	"cjs":    "JavaScript",
	"ts":     "TypeScript",
	"tsx":    "TypeScript",
	"py":     "Python",
	"rb":     "Ruby",
	"java":   "Java",
	"c":      "C",
	"h":      "C",
	"cpp":    "C++",
	"cc":     "C++",
	"cxx":    "C++",
	"hpp":    "C++",
	"cs":     "C#",
	"php":    "PHP",
	"swift":  "Swift",
	"kt":     "Kotlin",
	"kts":    "Kotlin",
	"rs":     "Rust",
	"scala":  "Scala",
	"sh":     "Shell",
	"bash":   "Shell",
	"zsh":    "Shell",
	"fish":   "Shell",
	"ps1":    "PowerShell",
	"html":   "HTML",
	"htm":    "HTML",
	"css":    "CSS",
	"scss":   "SCSS",
	"sass":   "SCSS",
	"less":   "Less",
	"json":   "JSON",
	"jsonc":  "JSON",
	"yaml":   "YAML",
	"yml":    "YAML",
	"toml":   "TOML",
	"xml":    "XML",
	"md":     "Markdown",
	"mdx":    "Markdown",
	"sql":    "SQL",
	"r":      "R",
	"m":      "Objective-C",
	"mm":     "Objective-C",
	"lua":    "Lua",
	"pl":     "Perl",
	"pm":     "Perl",
	"dart":   "Dart",
	"ex":     "Elixir",
	"exs":    "Elixir",
	"erl":    "Erlang",
	"hs":     "Haskell",
	"clj":    "Clojure",
	"cljs":   "Clojure",
	"elm":    "Elm",
	"vue":    "Vue",
	"svelte": "Svelte",
	"astro":  "Astro",
	"tf":     "Terraform",
	"tfvars": "Terraform",
	"proto":  "Protocol Buffers",
	"graphql": "GraphQL",
	"gql":     "GraphQL",
	"zig":     "Zig",
	"nim":     "Nim",
	"groovy":  "Groovy",
	"gradle":  "Groovy",
	"v":       "V",
	"vim":     "Vim Script",
	"bat":     "Batch",
	"cmd":     "Batch",
	"asm":     "Assembly",
	"s":       "Assembly",
	"f90":     "Fortran",
	"ipynb":   "Jupyter Notebook",
}

// LanguageFromPath maps a file path to a canonical language
// name. Returns false for unknown or deliberately ignored files.
func LanguageFromPath(filePath string) (string, bool) {
	// Accept either separator; path.Base only splits on "/".
	normalized := strings.ReplaceAll(filePath, "\\", "/")
	base := strings.ToLower(path.Base(normalized))
	if base == "" || base == "." || base == "/" {
		return "", false
	}

	if lang, ok := specialFilenames[base]; ok {
		return lang, true
	}

	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return "", false
	}
	ext := base[idx+1:]

	if _, ignored := ignoredExtensions[ext]; ignored {
		return "", false
	}
	lang, ok := extensionLanguages[ext]
	return lang, ok
}

// LanguagesFromPaths maps each path, dedupes the canonical
// names, and returns them in ascending lexical order.
func LanguagesFromPaths(paths []string) []string {
	seen := make(map[string]struct{})
	for _, p := range paths {
		if lang, ok := LanguageFromPath(p); ok {
			seen[lang] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
