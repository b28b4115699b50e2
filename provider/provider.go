// Package provider sends rendered payloads to the ERNIE chat endpoint.
package provider

import "github.com/ZaguanLabs/ernie"

// ChatProvider is an alias to the main package interface for convenience.
type ChatProvider = ernie.ChatProvider

// Payload is an alias to the main package type.
type Payload = ernie.Payload
