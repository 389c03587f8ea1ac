package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"golang.org/x/sync/errgroup"

	"chat-captcha/src/pkg/captcha"
	"chat-captcha/src/pkg/config"
	"chat-captcha/src/pkg/ocr"
)

/*
main solves captchas from the command line.

Exactly one input is used: -b64 (an encoded captcha), -file (a file holding
one), or -dir (every *.txt file in a directory, solved by -workers goroutines).
The cache is flushed before exit so every solution survives the run.
*/
func main() {
	config.CheckIfEnvVarsPresent()

	// Common flags.
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	// Program-specific flags.
	encoded := flag.String("b64", "", "Base64 captcha, optionally prefixed with 'data:image/png;base64,'.")
	filePath := flag.String("file", "", "Path to a file containing one base64 captcha.")
	dirPath := flag.String("dir", "", "Directory of *.txt files, each containing one base64 captcha.")
	workers := flag.Int("workers", 4, "Number of captchas solved concurrently with -dir.")

	// Parse and initialize config.
	flag.Parse()
	config.InitializeConfig(*configPath)

	solver := captcha.NewSolver(captcha.Cfg, ocr.Cfg)
	solver.EnsureInitialized()
	defer solver.Flush()

	switch {
	case *encoded != "":
		solveOne(solver, "-b64", *encoded)
	case *filePath != "":
		fileBytes, readErr := os.ReadFile(*filePath)
		xerr.QuitIfError(readErr, "read captcha file '"+*filePath+"'")
		solveOne(solver, *filePath, string(fileBytes))
	case *dirPath != "":
		e := solveDirectory(solver, *dirPath, *workers)
		if e != nil {
			solver.Flush()
		}
		e.QuitIf(xerr.ErrorTypeError)
	default:
		tl.Log(tl.Warning, palette.YellowBold, "%s parameter is %s", "one of --b64, --file or --dir", "required")
		os.Exit(1)
	}

	stats := solver.Stats()
	tl.LogJSON(tl.Info, palette.CyanDim, "Solver stats", stats)
}

func solveOne(solver *captcha.Solver, source, encoded string) {
	text, err := solver.SolveDetailed(strings.TrimSpace(encoded))
	if err != nil {
		tl.Log(tl.Warning1, palette.Yellow, "Unable to solve '%s': '%s'", source, err)
		return
	}
	tl.Log(tl.Notice1, palette.GreenBold, "Solved '%s': '%s'", source, text)
}

/*
solveDirectory solves every *.txt file in dirPath with at most workers solves in
flight. Unreadable files are logged and skipped.
*/
func solveDirectory(solver *captcha.Solver, dirPath string, workers int) (e *xerr.Error) {
	paths, globErr := filepath.Glob(filepath.Join(dirPath, "*.txt"))
	if globErr != nil {
		e = xerr.NewError(globErr, "list captcha files", dirPath)
		return e
	}
	if len(paths) == 0 {
		tl.Log(tl.Notice, palette.Purple, "No %s found in '%s'", "*.txt files", dirPath)
		return e
	}

	tl.Log(tl.Notice, palette.BlueBold, "Solving '%s' captchas from '%s' with '%s' workers", fmt.Sprintf("%d", len(paths)), dirPath, fmt.Sprintf("%d", workers))

	var group errgroup.Group
	group.SetLimit(max(workers, 1))
	for _, path := range paths {
		group.Go(func() error {
			fileBytes, readErr := os.ReadFile(path)
			if readErr != nil {
				tl.Log(tl.Warning, palette.Yellow, "Skipping '%s': '%s'", path, readErr)
				return nil
			}
			solveOne(solver, filepath.Base(path), string(fileBytes))
			return nil
		})
	}
	waitErr := group.Wait()
	if waitErr != nil {
		e = xerr.NewError(waitErr, "solve captcha directory", dirPath)
	}

	return e
}
