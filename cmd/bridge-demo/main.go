// bridge-demo wires a controller-side channel against a scripted worker
// over in-process pipe pairs. The worker echoes every notification back as
// an inbound-shaped notification targeting "demo.echo", with the payload
// reversed, so both wire directions are exercised.
package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/coalfork/wirebridge/internal/channel"
	"github.com/coalfork/wirebridge/internal/config"
	"github.com/coalfork/wirebridge/internal/logging"
	"github.com/coalfork/wirebridge/internal/protocol/netstring"
	"github.com/coalfork/wirebridge/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "optional channel config (TOML)")
	flag.Parse()

	logging.ConfigureRuntime()
	log := logging.Logger().With().Str("component", "bridge-demo").Logger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Error().Err(err).Msg("config load failed")
			os.Exit(1)
		}
		cfg = loaded
	}

	// Controller writes on one duplex pipe, reads on the other.
	ctrlOut, workerIn := transport.Pair()
	workerOut, ctrlIn := transport.Pair()

	done := make(chan struct{})
	sinks := channel.NewSinkRegistry()
	sinks.Register("demo.echo", channel.SinkFunc(func(targetID, event string, data json.RawMessage, payload []byte) {
		log.Info().
			Str("target_id", targetID).
			Str("event", event).
			RawJSON("data", orNull(data)).
			Str("payload", string(payload)).
			Msg("delivered")
		if event == "demo.done" {
			close(done)
		}
	}))

	ch := channel.New(ctrlOut, ctrlIn, sinks, channel.Options{
		Name:          cfg.Name,
		TeardownDelay: cfg.TeardownDelay(),
	})
	ctrlOut.Start()
	ctrlIn.Start()

	runWorker(workerIn, workerOut)

	for i, msg := range []string{"first attachment", "second attachment"} {
		err := ch.Notify("demo.ping", map[string]any{"seq": i}, map[string]any{"note": msg}, []byte(msg))
		if err != nil {
			log.Error().Err(err).Msg("notify failed")
			os.Exit(1)
		}
	}
	if err := ch.Notify("demo.done", map[string]any{"seq": 2}, nil, []byte("bye")); err != nil {
		log.Error().Err(err).Msg("notify failed")
		os.Exit(1)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Error().Msg("timed out waiting for echoes")
	}

	ch.Close()
	time.Sleep(cfg.TeardownDelay() + 50*time.Millisecond)
}

// runWorker plays the remote worker process: it reassembles the
// controller's header+payload frames and answers each pair with an
// inbound-shaped notification for target "demo.echo".
func runWorker(in, out *transport.StreamEndpoint) {
	var buf []byte
	var pendingEvent string
	havePending := false

	in.OnData(func(chunk []byte) {
		buf = append(buf, chunk...)
		for {
			body, consumed, err := netstring.Decode(buf)
			if err != nil || consumed == 0 {
				return
			}
			if !havePending {
				var h struct {
					Event string `json:"event"`
				}
				_ = json.Unmarshal(body, &h)
				pendingEvent = h.Event
				havePending = true
			} else {
				havePending = false
				reply, _ := json.Marshal(map[string]any{
					"targetId": "demo.echo",
					"event":    pendingEvent,
					"data":     map[string]any{"echoed": true},
				})
				_ = out.Write(netstring.Encode(reply))
				_ = out.Write(netstring.Encode(reverse(body)))
			}
			buf = buf[consumed:]
		}
	})
	in.Start()
	out.Start()
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

func orNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
