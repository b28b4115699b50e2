// Package cache provides result caches for finished translations.
package cache

import "github.com/ZaguanLabs/ernie"

// ResultCache is an alias to the main package interface. Keys come from
// ernie.RequestKey; values are translated strings.
type ResultCache = ernie.ResultCache
