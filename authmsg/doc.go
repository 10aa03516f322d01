/*

Package authmsg derives the canonical authorization message a signer must
approve with a root-chain signature before a batch may execute.

Two generations of encoding are in force. Older clients sign human
readable text: each transaction renders to a templated block and a signer
approves the blocks of the transactions it originated, or, for batches
spanning independent accounts, every signer approves one shared text
covering all transactions. Current clients sign the content hash: the hex
digest over the concatenated wire bytes of every transaction in batch
order. The verifying side accepts all three forms.

Every encoding is deterministic and order sensitive. Reordering the batch
changes the message and silently invalidates previously collected
signatures, so callers must fix the transaction order before collecting.

*/
package authmsg
