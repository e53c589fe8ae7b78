// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
)

const sigilCommands = "init scan clone pip npm fetch list approve reject diff completion"

var completionScripts = map[string]string{
	"bash": `_sigil_completions() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    COMPREPLY=( $(compgen -W "` + sigilCommands + `" -- "$cur") )
}
complete -F _sigil_completions sigil
`,
	"zsh": `#compdef sigil
_sigil() {
    _arguments '1: :(` + sigilCommands + `)'
}
_sigil
`,
	"fish": `complete -c sigil -f -a "` + sigilCommands + `"
`,
}

// runCompletion executes 'sigil completion <shell>', printing a static
// completion script for bash, zsh, or fish to stdout.
func runCompletion(args []string, globals GlobalFlags) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: sigil completion <bash|zsh|fish>\n")
		return 1
	}
	script, ok := completionScripts[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unsupported shell %q (want bash, zsh, or fish)\n", args[0])
		return 1
	}
	fmt.Print(script)
	return 0
}
