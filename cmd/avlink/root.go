package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opd-ai/avlink/av"
	"github.com/opd-ai/avlink/config"
	"github.com/opd-ai/avlink/device"
	"github.com/opd-ai/avlink/interfaces"
	"github.com/opd-ai/avlink/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// errNoPeer is returned when no peer address was configured or entered.
var errNoPeer = errors.New("no peer address given")

func newRootCommand(stdin io.Reader) *cobra.Command {
	v := config.New()
	var configFile string
	var frames int

	cmd := &cobra.Command{
		Use:   "avlink",
		Short: "Two-way audio/video streaming with a single peer",
		Long: `avlink captures video and audio, sends them to a peer over UDP and
plays back the peer's stream. Video uses port 8080 and audio port 8081 on
both sides unless configured otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Read(v, configFile); err != nil {
				return err
			}
			cfg, err := config.FromViper(v)
			if err != nil {
				return err
			}
			if err := cfg.ConfigureLogging(); err != nil {
				return err
			}

			peer := cfg.Peer
			if peer == "" {
				peer, err = promptPeer(stdin, cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}

			return run(cmd, cfg, peer, frames)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default ./avlink.yaml or ~/.avlink/avlink.yaml)")
	flags.String("peer", "", "peer IPv4 or IPv6 address")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.IntVar(&frames, "frames", 0, "quit after this many displayed frames (0 runs until interrupted)")

	_ = v.BindPFlag("peer", flags.Lookup("peer"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	return cmd
}

// promptPeer reads the peer address as a single line of text.
func promptPeer(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter peer IP address: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read peer address: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errNoPeer
	}
	return line, nil
}

func run(cmd *cobra.Command, cfg *config.Config, peer string, frames int) error {
	peers, err := transport.NewPeerEndpoints(peer, cfg.Video.Port, cfg.Audio.Port)
	if err != nil {
		return err
	}

	sc := cfg.Session()
	deps := av.SessionDeps{
		Camera: device.NewPatternCamera(device.PatternConfig{
			Width:  sc.Resolution.Width,
			Height: sc.Resolution.Height,
			FPS:    sc.FPS,
		}),
		Renderer: device.NewHeadlessRenderer(frames),
		Audio: device.NewToneDevice(interfaces.AudioDeviceConfig{
			SampleRate: sc.SampleRate,
			FrameSize:  sc.FrameSize,
			Channels:   1,
		}, 440),
	}

	session, err := av.NewSession(sc, peers, deps)
	if err != nil {
		_ = deps.Renderer.Close()
		_ = deps.Camera.Close()
		_ = deps.Audio.Close()
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "run",
		"session":  session.ID(),
		"peer":     peer,
	}).Info("Starting session")

	if err := session.Run(cmd.Context()); err != nil {
		return err
	}

	st := session.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "Exiting camera feed. %d frames, %.1f fps\n", st.Frames, st.FPS)
	return nil
}
