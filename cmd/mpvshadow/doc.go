// Command mpvshadow cuts the subtitle line currently shown in mpv into a
// reference clip, records the user's spoken take, and compares the two.
//
// Run `mpvshadow run` while mpv is started with
// --input-ipc-server=/tmp/mpvsocket and bind a key to
// `script-message cut_current_sub` in input.conf.
package main
