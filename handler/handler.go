package handler

import "geminiproxy/logging"

// log tags every handler line so proxy traffic can be filtered from startup output.
var log = logging.GetLogger().WithField("component", "proxy")
