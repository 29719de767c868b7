// Package audio plays raw PCM through the default output device using
// oto/v3. Playback is synchronous: Play returns once the last sample has
// been handed to the device.
package audio
