// Package protocol serves the learning protocol over stdio: one JSON
// request per line in, one JSON response per line out. The envelope is
// transport-agnostic; this is the line-delimited local channel agents
// drive directly.
package protocol

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// Handler is the subset of the learning protocol the server dispatches to.
type Handler interface {
	Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error)
	Teach(ctx context.Context, req domain.TeachRequest) (domain.TeachResult, error)
	Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error)
	LearnProject(ctx context.Context) (domain.LearnProjectResult, error)
	MemoryStatus() (domain.MemoryStatusResult, error)
}

// Server reads newline-delimited JSON requests and answers each on its
// own line. A malformed request is answered with an error response; the
// loop only ends on EOF or a write failure.
type Server struct {
	handler Handler
	in      io.Reader
	out     io.Writer
	logger  ports.Logger
}

// NewServer wires a protocol server around the handler.
func NewServer(handler Handler, in io.Reader, out io.Writer, logger ports.Logger) *Server {
	return &Server{handler: handler, in: in, out: out, logger: logger}
}

type request struct {
	Op       string   `json:"op"`
	Intent   string   `json:"intent"`
	Command  string   `json:"command"`
	Source   string   `json:"source"`
	Save     *bool    `json:"save"`
	Question string   `json:"question"`
	Context  string   `json:"context"`
	Tried    []string `json:"tried"`
}

type errorResponse struct {
	Status  domain.ProtocolStatus `json:"status"`
	Message string                `json:"message"`
}

// Serve runs the request loop until stdin is exhausted.
func (s *Server) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		response := s.handle(ctx, line)
		if err := encoder.Encode(response); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, line []byte) interface{} {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		if s.logger != nil {
			s.logger.Warn("malformed protocol request", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return errorResponse{Status: domain.StatusError, Message: fmt.Sprintf("malformed request: %v", err)}
	}

	switch req.Op {
	case "ask":
		if req.Intent == "" {
			return errorResponse{Status: domain.StatusError, Message: "intent is required"}
		}
		result, err := s.handler.Ask(ctx, domain.AskRequest{
			Intent:   req.Intent,
			Question: req.Question,
			Context:  req.Context,
			Tried:    req.Tried,
		})
		if err != nil {
			return errorResponse{Status: domain.StatusError, Message: err.Error()}
		}
		return result
	case "teach":
		if req.Intent == "" || req.Command == "" {
			return errorResponse{Status: domain.StatusError, Message: "intent and command are required"}
		}
		save := req.Save == nil || *req.Save
		result, err := s.handler.Teach(ctx, domain.TeachRequest{
			Intent:  req.Intent,
			Command: req.Command,
			Source:  req.Source,
			Save:    save,
		})
		if err != nil {
			return errorResponse{Status: domain.StatusError, Message: err.Error()}
		}
		return result
	case "run":
		if req.Intent == "" {
			return errorResponse{Status: domain.StatusError, Message: "intent is required"}
		}
		result, err := s.handler.Run(ctx, domain.RunRequest{Intent: req.Intent})
		if err != nil {
			return errorResponse{Status: domain.StatusError, Message: err.Error()}
		}
		return result
	case "learn_project":
		result, err := s.handler.LearnProject(ctx)
		if err != nil {
			return errorResponse{Status: domain.StatusError, Message: err.Error()}
		}
		return result
	case "status":
		result, err := s.handler.MemoryStatus()
		if err != nil {
			return errorResponse{Status: domain.StatusError, Message: err.Error()}
		}
		return result
	default:
		return errorResponse{Status: domain.StatusError, Message: fmt.Sprintf("unknown op %q", req.Op)}
	}
}
