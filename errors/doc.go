/*

Package errors implements the error taxonomy of the batch authorization
protocol. Every error raised during runtime wraps one of the registered
root errors, which lets callers distinguish a local configuration failure
from an oracle-side rejection without parsing message text.

Create errors with Wrap or a root's New method, and test them with the
root's Is method:

	if err := batch.Validate(); errors.ErrConfiguration.Is(err) {
		...
	}

*/
package errors
