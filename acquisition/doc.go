// Package acquisition obtains source media for the pipeline.
//
// Classify recognizes YouTube video, playlist and channel locators.
// YTDLP downloads a video's audio track as mono WAV and lists the entries of
// playlists and channels by running yt-dlp (with ffmpeg post-processing)
// through a process.Runner.
package acquisition
