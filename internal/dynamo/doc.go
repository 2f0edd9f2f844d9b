// Package dynamo provides the core types shared by every layer of the
// gravity kernel.
//
//   - [State]: time, height and vertical velocity of one point mass
//   - [Handle]: opaque token identifying a live world
//   - [Status]: the status codes returned across the C ABI
//   - [KernelError]: error carrying the operation and handle that failed
//
// Errors returned by the registry wrap one of the sentinel errors
// ([ErrInvalidArgument], [ErrInvalidHandle], [ErrPolicyDenied],
// [ErrNonFinite]); [StatusOf] maps any of them onto a [Status].
package dynamo
