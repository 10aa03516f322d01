/*

Package stratum defines the core types of the stratum layer-2 protocol:
root-chain addresses, the transaction variants (transfer, withdraw) that can
be bundled into an atomically authorized batch, and their canonical wire
serialization.

Subpackages build the full authorization pipeline on top of these types:
wallet constructs and signs transactions, batch assembles them and collects
root-chain signatures, authmsg derives the canonical message each signer
approves, client submits the batch and awaits confirmation, and oracle is a
reference implementation of the verifying side.

*/

package stratum
