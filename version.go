package main

// Version is the versync CLI version.
var Version = "0.1.0"
