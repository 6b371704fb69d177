package utils

import (
	"errors"
	"time"
)

const ToolUserAgent = "okapi-downloader/v0.1 (ops-dumps@wikimedia.org)"

// connect and read timeout for every request made against the export api
const DefaultTimeout = 20 * time.Second
const DefaultKATimeout = 60 * time.Second
const DefaultBufferSize = 1024 * 1024 // 1MB chunks
const TempSuffix = ".tmp"

var ErrUnexpectedStatus = errors.New("unexpected status code")
var ErrReadTimeout = errors.New("read timed out")
var GlobalDebugFlag = false
