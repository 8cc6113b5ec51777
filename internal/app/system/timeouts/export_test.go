package timeouts

// Reset lets tests undo Configure.
var Reset = reset
