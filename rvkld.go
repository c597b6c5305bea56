package main

import (
	"fmt"
	"os"
	"path/filepath"
	"rvkld/pkg/layout"
	"rvkld/pkg/utils"
	"strconv"
	"strings"
)

var version string

type args struct {
	output       string
	format       string
	mapFile      string
	scriptFile   string
	libraryPaths []string
	cfg          layout.Config
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("usage: %s [options] file...\n", os.Args[0])
		os.Exit(1)
	}

	a := &args{
		output: "kernel.elf",
		format: "elf",
		cfg:    layout.NewConfig(),
	}

	remaining := parseArgs(a)

	sections := layout.ReadInputFiles(a.libraryPaths, remaining)

	l, err := layout.Compute(a.cfg, sections)
	utils.MustNo(err)

	if a.scriptFile != "" {
		file, err := os.Create(a.scriptFile)
		utils.MustNo(err)
		utils.MustNo(layout.WriteScript(a.cfg, file))
		utils.MustNo(file.Close())
	}

	if a.mapFile != "" {
		file, err := os.Create(a.mapFile)
		utils.MustNo(err)
		utils.MustNo(layout.WriteMap(l, file))
		utils.MustNo(file.Close())
	}

	file, err := os.OpenFile(a.output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0777)
	utils.MustNo(err)

	switch a.format {
	case "elf":
		utils.MustNo(layout.WriteELF(l, file))
	case "bin":
		utils.MustNo(layout.WriteFlat(l, file))
	default:
		utils.Fatal(fmt.Sprintf("unknown output format: %s", a.format))
	}

	utils.MustNo(file.Close())
}

func parseArgs(a *args) []string {
	osArgs := os.Args[1:]

	dashes := func(name string) []string {
		if len(name) == 1 {
			return []string{"-" + name}
		}
		return []string{"-" + name, "--" + name}
	}

	arg := ""
	readArg := func(name string) bool {
		for _, opt := range dashes(name) {
			if osArgs[0] == opt {
				if len(osArgs) == 1 {
					utils.Fatal(fmt.Sprintf("option -%s: argument missing", name))
				}

				arg = osArgs[1]
				osArgs = osArgs[2:]
				return true
			}

			prefix := opt
			if len(name) > 1 {
				prefix += "="
			}
			if strings.HasPrefix(osArgs[0], prefix) {
				arg = osArgs[0][len(prefix):]
				osArgs = osArgs[1:]
				return true
			}
		}

		return false
	}

	readFlag := func(name string) bool {
		for _, opt := range dashes(name) {
			if osArgs[0] == opt {
				osArgs = osArgs[1:]
				return true
			}
		}

		return false
	}

	readAddr := func(name string) (uint64, bool) {
		if !readArg(name) {
			return 0, false
		}
		val, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			utils.Fatal(fmt.Sprintf("option -%s: bad address: %s", name, arg))
		}
		return val, true
	}

	remaining := make([]string, 0)
	for len(osArgs) > 0 {
		if readFlag("help") {
			fmt.Printf("usage: %s [options] file...\n", os.Args[0])
			os.Exit(0)
		}

		if readArg("o") || readArg("output") {
			a.output = arg
		} else if readFlag("v") || readFlag("version") {
			fmt.Printf("rvkld %s\n", version)
			os.Exit(0)
		} else if readArg("e") || readArg("format") {
			a.format = arg
		} else if val, ok := readAddr("base"); ok {
			a.cfg.Base = val
		} else if val, ok := readAddr("stack-size"); ok {
			a.cfg.StackSize = val
		} else if readArg("discard") {
			a.cfg.Discard = append(a.cfg.Discard, arg)
		} else if readArg("map") {
			a.mapFile = arg
		} else if readArg("script") {
			a.scriptFile = arg
		} else if readArg("L") {
			a.libraryPaths = append(a.libraryPaths, arg)
		} else if readArg("l") {
			remaining = append(remaining, "-l"+arg)
		} else {
			if osArgs[0][0] == '-' {
				utils.Fatal(fmt.Sprintf(
					"unknown command line option: %s", osArgs[0]))
			}
			remaining = append(remaining, osArgs[0])
			osArgs = osArgs[1:]
		}
	}

	for i, path := range a.libraryPaths {
		a.libraryPaths[i] = filepath.Clean(path)
	}

	return remaining
}
