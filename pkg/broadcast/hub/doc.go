// Package hub fans batch events out to subscribers inside the process: Go
// code via Subscribe and browsers or scripts via the websocket handler.
//
// Each subscriber owns a bounded buffer. A subscriber that falls behind loses
// events instead of slowing the batch down; Dropped reports how many.
package hub
