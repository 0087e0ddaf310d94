// Package media records the export canvas and audio into WebM.
//
// # Capability Probing
//
// Probe lists the encoders and muxers of the local ffmpeg. Capabilities
// answers IsTypeSupported for recorder MIME types, and SelectMIMEType walks
// PreferredMIMETypes:
//
//	video/webm;codecs=vp9,opus
//	video/webm;codecs=vp8,opus
//	video/webm;codecs=vp9
//	video/webm;codecs=vp8
//	video/webm
//
// # Recording
//
// Recorder runs ffmpeg with two inputs, raw RGBA frames on stdin and s16le
// PCM on an extra pipe, and streams the encoded WebM back in chunks.
// CanvasStream feeds the video input at a fixed frame rate:
//
//	rec, _ := media.NewRecorder(opts)
//	rec.Start(ctx)
//	stream := media.NewCanvasStream(canvas, 30)
//	stream.Start(rec.VideoInput())
//	element.Route(rec.AudioInput())
package media
