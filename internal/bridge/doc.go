// Package bridge carries protocol envelopes between the panel and the host
// engine over a single stream connection.
//
// Frames are newline-delimited JSON (see package protocol). Outbound
// envelopes are queued by Send and written by one writer goroutine in call
// order; Send never blocks and reports nothing back. Inbound frames are read
// by Run and handed to every registered handler on the read goroutine, so
// handlers never run concurrently with each other and always see envelopes
// in arrival order.
//
// Frames that fail to decode are dropped and counted; a host that speaks a
// newer protocol revision cannot break the panel.
//
//	b, err := bridge.Dial(ctx, "unix://~/.local/state/typetune/host.sock")
//	if err != nil {
//		return err
//	}
//	defer b.Close()
//	unregister := b.OnMessage(func(msg protocol.Inbound) { ... })
//	defer unregister()
//	go b.Run(ctx)
//	b.Send(protocol.Init{})
package bridge
