package main

import (
	"io/ioutil"
	"testing"

	"gopkg.in/urfave/cli.v1"
)

func TestArgCount(t *testing.T) {
	oldExiter, oldErrWriter := cli.OsExiter, cli.ErrWriter
	defer func() {
		cli.OsExiter, cli.ErrWriter = oldExiter, oldErrWriter
	}()
	cli.ErrWriter = ioutil.Discard

	for _, args := range [][]string{{}, {"config.yml"}, {"config.yml", "model", "extra"}} {
		code := -1
		cli.OsExiter = func(c int) {
			code = c
		}
		app := newApp()
		app.Writer = ioutil.Discard
		err := app.Run(append([]string{"ctctrain"}, args...))
		exitErr, ok := err.(cli.ExitCoder)
		if !ok {
			t.Errorf("args %v: expected exit error but got %v", args, err)
			continue
		}
		if exitErr.ExitCode() != 1 || code != 1 {
			t.Errorf("args %v: expected exit code 1 but got %d (exiter saw %d)", args,
				exitErr.ExitCode(), code)
		}
	}
}
