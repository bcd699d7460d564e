package discinstall

import "github.com/calaveras/discinstall/internal/engine"

// Type aliases re-export engine types as the public API. Users import
// "github.com/calaveras/discinstall/pkg/discinstall" and use
// discinstall.Result, discinstall.MediaRequest, etc.

type Result = engine.Result
type MediaRequest = engine.MediaRequest
type Prompter = engine.Prompter

// ErrInterrupted reports an operator interrupt that aborted the run.
var ErrInterrupted = engine.ErrInterrupted
