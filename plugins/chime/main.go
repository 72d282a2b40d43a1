package main

import (
	"context"
	"fmt"
	"os"
	"time"

	notifyrpc "focusdo/internal/modules/notify/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *notifyrpc.Empty) (*notifyrpc.Metadata, error) {
	return &notifyrpc.Metadata{
		Name:         "chime",
		Version:      "1.0.0",
		Capabilities: []string{"notify"},
	}, nil
}

func (s *server) Notify(_ context.Context, in *notifyrpc.NotifyRequest) (*notifyrpc.NotifyResponse, error) {
	at := time.Unix(in.AtUnix, 0).Local().Format("15:04")
	var line string
	switch in.Kind {
	case "session_started":
		line = fmt.Sprintf("[%s] session started: %s", at, in.Goal)
	case "action_completed":
		line = fmt.Sprintf("[%s] done (%d min): %s", at, in.Minutes, in.ActionText)
	case "session_completed":
		line = fmt.Sprintf("[%s] session complete: %s", at, in.Goal)
	case "break_suggested":
		line = fmt.Sprintf("[%s] take a %d minute break", at, in.Minutes)
	default:
		return &notifyrpc.NotifyResponse{Ack: false, Detail: "unknown event kind: " + in.Kind}, nil
	}
	// terminal bell plus a log line; a real notifier would hook the OS
	// notification center here
	fmt.Fprintf(os.Stderr, "\a%s\n", line)
	return &notifyrpc.NotifyResponse{Ack: true}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: notifyrpc.HandshakeConfig,
		Plugins:         notifyrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
