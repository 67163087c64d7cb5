package commands

import (
	"io/ioutil"
	"os"

	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
)

var logFile = ""

// redirectLogs sends log output to the --log-file, or drops it, while termbox
// owns the terminal. The returned function restores stderr.
func redirectLogs() func() {
	restore := func() { log.SetOutput(os.Stderr) }
	if logFile == "" {
		log.SetOutput(ioutil.Discard)
		return restore
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.WithError(err).Warn("unable to open log file, discarding logs")
		log.SetOutput(ioutil.Discard)
		return restore
	}
	log.SetOutput(f)
	return func() {
		restore()
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("unable to close log file")
		}
	}
}

func setupEventQueue() <-chan termbox.Event {
	eventQueue := make(chan termbox.Event)
	go func(ev chan<- termbox.Event) {
		for {
			ev <- termbox.PollEvent()
		}
	}(eventQueue)
	return eventQueue
}
