package mariadbd

import "github.com/embedsql/embedsql/internal/process"

// installArg is one entry of a platform rule: either a literal flag or a
// flag carrying a normalized file path (Path non-empty).
type installArg struct {
	Flag string
	Path string
}

// installRule appends platform-conditional install flags. Rules are applied
// in order and each rule's args keep their listed order; the install binary
// is sensitive to flag ordering, so the whole contract stays auditable in
// this one table rather than scattered across call sites.
type installRule struct {
	Matches func(goos string) bool
	Args    func(baseDir string) []installArg
}

var installRules = []installRule{
	{
		Matches: func(goos string) bool { return goos == "linux" },
		Args: func(baseDir string) []installArg {
			return []installArg{
				{Flag: "--basedir", Path: baseDir},
				{Flag: "--no-defaults"},
				{Flag: "--force"},
				{Flag: "--skip-name-resolve"},
				{Flag: "--verbose"},
			}
		},
	},
}

// applyInstallRules appends the install flags for goos to the builder.
func applyInstallRules(b *process.Builder, goos, baseDir string) {
	for _, rule := range installRules {
		if !rule.Matches(goos) {
			continue
		}
		for _, arg := range rule.Args(baseDir) {
			if arg.Path != "" {
				b.AddFileArgument(arg.Flag, arg.Path)
			} else {
				b.AddArgument(arg.Flag)
			}
		}
	}
}
