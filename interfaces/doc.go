// Package interfaces defines the contracts between the avlink media core and
// its external collaborators.
//
// The core never talks to hardware directly. It drives:
//
//   - [Camera]: blocking frame capture; an empty frame is fatal to the controller.
//   - [Renderer]: frame display plus a bounded wait that doubles as the quit-key poll.
//   - [AudioDevice]: a periodic callback subsystem; the input callback hands over
//     one captured period, the output callback asks for one period to play.
//
// The device package ships headless implementations of all three, which is
// what the avlink command and the integration tests use:
//
//	cam := device.NewPatternCamera(device.PatternConfig{Width: 640, Height: 480, FPS: 30})
//	var _ interfaces.Camera = cam
//
// Real hardware bindings satisfy the same interfaces and plug into
// av.SessionDeps without touching the core.
package interfaces
