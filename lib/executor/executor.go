// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/elnforge/elnforge/lib/archive"
	"github.com/elnforge/elnforge/lib/attachment"
	"github.com/elnforge/elnforge/lib/binhash"
	"github.com/elnforge/elnforge/lib/extrafields"
	"github.com/elnforge/elnforge/lib/kernel"
	"github.com/elnforge/elnforge/lib/rocrate"
	"github.com/elnforge/elnforge/lib/thumbnail"
)

// FileDialog abstracts the platform file chooser so the executor can
// be driven without one in tests. A cancelled dialog returns zero
// values with a nil error.
type FileDialog interface {
	// PickFiles prompts for any number of attachment candidates.
	PickFiles() ([]string, error)

	// PickMetadataFile prompts for one metadata template (JSON or
	// YAML).
	PickMetadataFile() (string, error)
}

// Options configures an Executor.
type Options struct {
	// Workers is the pool size; zero or negative selects
	// DefaultWorkers().
	Workers int

	// Dialog handles file-chooser commands. Required when PickFiles or
	// PickMetadataFile commands will be dispatched.
	Dialog FileDialog

	// Organization is stamped into saved archives as the author.
	Organization rocrate.Organization

	// MathEnabled turns on $...$ rendering when the body is stored as
	// HTML.
	MathEnabled bool

	// Deliver receives exactly one message per executed command. Called
	// from worker goroutines; the receiver is responsible for getting
	// the message back onto the interactive thread.
	Deliver func(kernel.Message)
}

// DefaultWorkers returns the pool size used when Options.Workers is
// unset: one worker per CPU, but always at least two so a long archive
// build cannot starve hashing.
func DefaultWorkers() int {
	if cpus := runtime.NumCPU(); cpus > 2 {
		return cpus
	}
	return 2
}

// Executor runs kernel commands on a fixed worker pool. Dispatch never
// blocks: commands land in an unbounded queue and workers drain it in
// FIFO order. Every command produces exactly one message through
// Deliver, success or failure, so the kernel's pending counter always
// converges.
type Executor struct {
	options Options

	mutex  sync.Mutex
	signal *sync.Cond
	queue  []kernel.Command
	closed bool

	workers sync.WaitGroup
}

// New starts an executor with the given options.
func New(options Options) *Executor {
	if options.Workers <= 0 {
		options.Workers = DefaultWorkers()
	}
	if options.Deliver == nil {
		options.Deliver = func(kernel.Message) {}
	}

	executor := &Executor{options: options}
	executor.signal = sync.NewCond(&executor.mutex)

	executor.workers.Add(options.Workers)
	for range options.Workers {
		go executor.work()
	}
	return executor
}

// Dispatch queues commands for execution. Safe to call from any
// goroutine; a no-op after Close.
func (executor *Executor) Dispatch(commands ...kernel.Command) {
	if len(commands) == 0 {
		return
	}
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	if executor.closed {
		return
	}
	executor.queue = append(executor.queue, commands...)
	executor.signal.Broadcast()
}

// Close stops accepting commands, waits for queued work to finish, and
// returns once every worker has exited.
func (executor *Executor) Close() {
	executor.mutex.Lock()
	executor.closed = true
	executor.signal.Broadcast()
	executor.mutex.Unlock()
	executor.workers.Wait()
}

func (executor *Executor) work() {
	defer executor.workers.Done()
	for {
		executor.mutex.Lock()
		for len(executor.queue) == 0 && !executor.closed {
			executor.signal.Wait()
		}
		if len(executor.queue) == 0 && executor.closed {
			executor.mutex.Unlock()
			return
		}
		command := executor.queue[0]
		executor.queue = executor.queue[1:]
		executor.mutex.Unlock()

		executor.options.Deliver(executor.execute(command))
	}
}

// execute runs one command to completion and returns its result
// message.
func (executor *Executor) execute(command kernel.Command) kernel.Message {
	switch command := command.(type) {
	case kernel.HashFile:
		return hashFile(command.Path)
	case kernel.LoadThumbnail:
		return loadThumbnail(command.Path)
	case kernel.PickFiles:
		return executor.pickFiles()
	case kernel.PickMetadataFile:
		return executor.pickMetadataFile()
	case kernel.SaveArchive:
		return executor.saveArchive(command.Payload)
	default:
		return kernel.FieldsImportFailed{Reason: fmt.Sprintf("unknown command %T", command)}
	}
}

func hashFile(path string) kernel.Message {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return kernel.FileHashed{
		Path:   path,
		SHA256: binhash.HashFileOrSentinel(path),
		MIME:   attachment.DetectMIME(path),
		Size:   size,
	}
}

func loadThumbnail(path string) kernel.Message {
	decoded, err := thumbnail.Decode(path)
	if err != nil {
		return kernel.ThumbnailFailed{Path: path}
	}
	return kernel.ThumbnailDecoded{Path: path, Image: decoded}
}

func (executor *Executor) pickFiles() kernel.Message {
	if executor.options.Dialog == nil {
		return kernel.FilesPicked{}
	}
	paths, err := executor.options.Dialog.PickFiles()
	if err != nil {
		return kernel.FilesPicked{}
	}
	return kernel.FilesPicked{Paths: paths}
}

func (executor *Executor) pickMetadataFile() kernel.Message {
	if executor.options.Dialog == nil {
		return kernel.FieldsImportCancelled{}
	}
	path, err := executor.options.Dialog.PickMetadataFile()
	if err != nil {
		return kernel.FieldsImportFailed{Reason: err.Error()}
	}
	if path == "" {
		return kernel.FieldsImportCancelled{}
	}
	return ImportMetadataFile(path)
}

// ImportMetadataFile reads and parses one eLabFTW metadata template,
// selecting the parser by extension. Exported so interactive shells
// with their own file picker can share the import path.
func ImportMetadataFile(path string) kernel.Message {
	data, err := os.ReadFile(path)
	if err != nil {
		return kernel.FieldsImportFailed{Reason: err.Error()}
	}

	var parsed extrafields.Import
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parsed, err = extrafields.ImportYAML(data)
	default:
		parsed, err = extrafields.ImportJSON(data)
	}
	if err != nil {
		return kernel.FieldsImportFailed{Reason: fmt.Sprintf("parsing %s: %s", filepath.Base(path), err)}
	}

	return kernel.FieldsImported{
		Fields: parsed.Fields,
		Groups: parsed.Groups,
		Source: path,
	}
}

func (executor *Executor) saveArchive(payload kernel.SavePayload) kernel.Message {
	err := archive.BuildAndWrite(archive.Request{
		OutputPath:   payload.OutputPath,
		Title:        payload.Title,
		Body:         payload.Body,
		BodyFormat:   payload.BodyFormat,
		MathEnabled:  executor.options.MathEnabled,
		Attachments:  payload.Attachments,
		Fields:       payload.Fields,
		Groups:       payload.Groups,
		PerformedAt:  payload.PerformedAt,
		Genre:        payload.Genre,
		Keywords:     payload.Keywords,
		Organization: executor.options.Organization,
	})
	if err != nil {
		return kernel.SaveCompleted{Path: payload.OutputPath, Err: err.Error()}
	}
	return kernel.SaveCompleted{Path: payload.OutputPath}
}
