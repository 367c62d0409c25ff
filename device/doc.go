// Package device provides headless implementations of the avlink
// collaborator interfaces: a colour-bar camera, a sine-tone audio device and
// a frame-counting renderer. They let the full pipeline run without camera,
// sound card or display, which is how the avlink command runs by default and
// how the integration tests drive a session.
package device
