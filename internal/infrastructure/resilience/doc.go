/*
Package resilience provides a circuit breaker for the durable store.

A store that keeps failing (locked database, full disk) is cut off after a
run of consecutive failures so callers get a fast ErrCircuitOpen instead of
stacking up on a dead dependency. After Timeout a limited number of probe
calls are let through; enough successes close the breaker again.

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                            |
	                                        [failure]
	                                            v
	                                           Open

Errors that describe the request rather than the dependency (a missing
record, a cancelled context) should be excluded with Settings.IsFailure so
they never trip the breaker.

	breaker := resilience.New("store", resilience.Settings{
		Timeout:     30 * time.Second,
		ReadyToTrip: resilience.ConsecutiveFailures(5),
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, store.ErrNotFound)
		},
	})

	deck, err := resilience.Call(ctx, breaker, func(ctx context.Context) (types.Deck, error) {
		return inner.GetDeck(ctx, id)
	})
*/
package resilience
