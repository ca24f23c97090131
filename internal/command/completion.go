// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/apiparity/internal/meta"
)

const bashCompletionScript = `# bash completion for apiparity
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_apiparity_endpoints()
{
    apiparity endpoints --output json 2>/dev/null | sed -n 's/^ *"name": "\(.*\)",\{0,1\}$/\1/p'
}

_apiparity()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "call diff endpoints completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local compare="--at --color -c --exit-code --filter -f --ignore --output -o"

    case "$cmd" in
        call)
            local opts="$compare --cached --catalog --method -X --param -p --real --real-token --real-rate --clone --clone-token --clone-rate --timeout"
            ;;
        diff)
            local opts="$compare"
            ;;
        endpoints)
            local opts="--attrs -a --catalog --color -c --output -o --padding --sort -s --titles -t"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts=""
            ;;
    esac

    case "$prev" in
        --output|-o)
            if [[ "$cmd" == "endpoints" ]]; then
                COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            else
                COMPREPLY=( $(compgen -W "text json yaml delta raw" -- "$cur") )
            fi
            return 0
            ;;
        --method|-X)
            COMPREPLY=( $(compgen -W "GET POST PUT PATCH DELETE HEAD" -- "$cur") )
            return 0
            ;;
        --catalog)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    case "$cmd" in
        call)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "$(_apiparity_endpoints)" -- "$cur") )
            fi
            ;;
        diff)
            COMPREPLY=( $(compgen -f -- "$cur") )
            ;;
    esac
    return 0
}

complete -F _apiparity apiparity
`

const zshCompletionScript = `#compdef apiparity

_apiparity_endpoints() {
  local -a names
  names=(${(f)"$(apiparity endpoints --output json 2>/dev/null | sed -n 's/^ *"name": "\(.*\)",\{0,1\}$/\1/p')"})
  _describe -t endpoints 'endpoints' names
}

_apiparity() {
  local -a cmds
  cmds=(
    'call:send one request to both deployments and compare'
    'diff:compare two saved responses'
    'endpoints:list the endpoint catalog'
    'completion:generate shell completion script'
  )

  local -a compare
  compare=(
  '--at[compare only this subtree]:path'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '--exit-code[exit 1 when the responses differ]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '*--ignore[identifier fields to skip]:field'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml delta raw)'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'apiparity commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    call)
      _arguments -C \
        $compare \
        '--cached[replay the last stored result]' \
        '--catalog[endpoint catalog]:file:_files' \
        '(-X --method)'{-X,--method}'[HTTP method]:method:(GET POST PUT PATCH DELETE HEAD)' \
        '*'{-p,--param}'[request parameter]:name=value' \
        '--real[real base URL]:url' \
        '--real-token[real bearer token]:token' \
        '--real-rate[real requests per second]:rate' \
        '--clone[clone base URL]:url' \
        '--clone-token[clone bearer token]:token' \
        '--clone-rate[clone requests per second]:rate' \
        '--timeout[per-request timeout]:duration' \
        '1:endpoint:_apiparity_endpoints' \
        '*:name=value'
      ;;
    diff)
      _arguments -C \
        $compare \
        '1:real:_files' \
        '2::clone:_files'
      ;;
    endpoints)
      _arguments -C \
        '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs' \
        '--catalog[endpoint catalog]:file:_files' \
        '(-c --color)'{-c,--color}'[enable colored text]' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '--padding[cell padding]:padding' \
        '(-s --sort)'{-s,--sort}'[sort attributes]:attrs' \
        '(-t --titles)'{-t,--titles}'[show titles]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _apiparity apiparity
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	out := stdout(m)

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(out, bashCompletionScript)
	case "zsh":
		fmt.Fprint(out, zshCompletionScript)
	default:
		fmt.Fprintln(stderr(m), "usage: apiparity completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "apiparity completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
