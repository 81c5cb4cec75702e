// Package shell renders the init scripts that wire xnav into a shell: a
// directory-change hook calling `xnav add`, the jump function, a bookmark
// alias and completion.
package shell

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"text/template"

	"xnav/internal/errors"
)

// Options parameterise the generated script.
type Options struct {
	// Binary is the command the script invokes
	Binary string
	// Command is the name of the jump function
	Command string
	// NoHook leaves out the directory-change hook
	NoHook bool
}

// DefaultOptions returns the stock binary and function names.
func DefaultOptions() Options {
	return Options{Binary: "xnav", Command: "x"}
}

var scripts = map[string]string{
	"bash": bashTemplate,
	"zsh":  zshTemplate,
	"fish": fishTemplate,
}

// Supported lists the shells Render accepts, sorted.
func Supported() []string {
	out := make([]string, 0, len(scripts))
	for name := range scripts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Render returns the init script for shell.
func Render(shell string, opts Options) (string, error) {
	src, ok := scripts[shell]
	if !ok {
		return "", errors.Newf(errors.InvalidArgument, "unsupported shell %q (supported: %v)", shell, Supported())
	}
	if opts.Binary == "" {
		opts.Binary = "xnav"
	}
	if opts.Command == "" {
		opts.Command = "x"
	}
	if !validName(opts.Command) {
		return "", errors.Newf(errors.InvalidArgument, "invalid function name %q", opts.Command)
	}

	tmpl, err := template.New(shell).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", shell, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("failed to render %s script: %w", shell, err)
	}
	return buf.String(), nil
}

// validName accepts names usable as a function in every supported shell.
func validName(name string) bool {
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return name != "" && !slices.Contains([]string{"cd", "if", "for", "function"}, name)
}

const bashTemplate = `# xnav initialization for bash
# eval "$({{.Binary}} init bash)"

{{.Command}}() {
    if [[ $# -eq 0 ]]; then
        cd "$(command {{.Binary}})" || return
        return
    fi

    local results
    mapfile -t results < <(command {{.Binary}} query -- "$@")

    case ${#results[@]} in
        0)
            return 1
            ;;
        1)
            cd "${results[0]}" || return
            ;;
        *)
            local opts choice
            opts=$(command {{.Binary}} config get fzf_options 2>/dev/null)
            choice=$(printf "%s\n" "${results[@]}" | fzf $opts --prompt="Select directory: ")
            [[ -n "$choice" ]] && cd "$choice"
            ;;
    esac
}
{{if not .NoHook}}
__xnav_add_hook() {
    command {{.Binary}} add -- "$PWD" >/dev/null 2>&1 &
    disown 2>/dev/null
}

if [[ "$PROMPT_COMMAND" != *"__xnav_add_hook"* ]]; then
    PROMPT_COMMAND="${PROMPT_COMMAND:+$PROMPT_COMMAND; }__xnav_add_hook"
fi
{{end}}
{{.Command}}b() {
    case "$1" in
        ""|add|remove|rm|list|ls|get|export|import|-*)
            command {{.Binary}} bookmark "$@"
            ;;
        *)
            local target
            target=$(command {{.Binary}} bookmark get -- "$1") && cd "$target"
            ;;
    esac
}

_{{.Command}}_completion() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    local IFS=$'\n'
    COMPREPLY=($(command {{.Binary}} query --suggest -- "$cur" 2>/dev/null))
}

complete -F _{{.Command}}_completion {{.Command}}
`

const zshTemplate = `# xnav initialization for zsh
# eval "$({{.Binary}} init zsh)"

{{.Command}}() {
    if [[ $# -eq 0 ]]; then
        cd "$(command {{.Binary}})" || return
        return
    fi

    local -a results
    results=("${(@f)$(command {{.Binary}} query -- "$@")}")
    results=(${results:#})

    case ${#results[@]} in
        0)
            return 1
            ;;
        1)
            cd "${results[1]}" || return
            ;;
        *)
            local opts choice
            opts=$(command {{.Binary}} config get fzf_options 2>/dev/null)
            choice=$(printf "%s\n" "${results[@]}" | fzf ${=opts} --prompt="Select directory: ")
            [[ -n "$choice" ]] && cd "$choice"
            ;;
    esac
}
{{if not .NoHook}}
__xnav_add_hook() {
    command {{.Binary}} add -- "$PWD" >/dev/null 2>&1 &!
}

autoload -Uz add-zsh-hook
add-zsh-hook chpwd __xnav_add_hook
{{end}}
{{.Command}}b() {
    case "$1" in
        ""|add|remove|rm|list|ls|get|export|import|-*)
            command {{.Binary}} bookmark "$@"
            ;;
        *)
            local target
            target=$(command {{.Binary}} bookmark get -- "$1") && cd "$target"
            ;;
    esac
}

_{{.Command}}_completion() {
    local -a suggestions
    suggestions=("${(@f)$(command {{.Binary}} query --suggest -- "${words[CURRENT]}" 2>/dev/null)}")
    compadd -U -- ${suggestions:#}
}

compdef _{{.Command}}_completion {{.Command}}
`

const fishTemplate = `# xnav initialization for fish
# {{.Binary}} init fish | source

function {{.Command}} --wraps cd --description "jump to a ranked directory"
    if test (count $argv) -eq 0
        cd (command {{.Binary}})
        return
    end

    set -l results (command {{.Binary}} query -- $argv)
    or return 1

    switch (count $results)
        case 0
            return 1
        case 1
            cd $results[1]
        case '*'
            set -l opts (string split ' ' -- (command {{.Binary}} config get fzf_options 2>/dev/null))
            set -l choice (printf "%s\n" $results | fzf $opts --prompt="Select directory: ")
            test -n "$choice"; and cd $choice
    end
end
{{if not .NoHook}}
function __xnav_add_hook --on-variable PWD
    command {{.Binary}} add -- "$PWD" >/dev/null 2>&1 &
end
{{end}}
function {{.Command}}b --description "jump to or manage xnav bookmarks"
    switch "$argv[1]"
        case "" add remove rm list ls get export import '-*'
            command {{.Binary}} bookmark $argv
        case '*'
            set -l target (command {{.Binary}} bookmark get -- $argv[1])
            and cd $target
    end
end

complete -c {{.Command}} -f -a "(command {{.Binary}} query --suggest -- (commandline -ct) 2>/dev/null)"
`
