// Package secure frames application payloads before they are handed to the
// MAC and unframes them on reception.
//
// A Framer seals a payload into a frame and opens a received frame back into
// the payload. NopFramer passes payloads through unchanged. AESFramer
// encrypts with AES-128 in CTR mode under a key derived from the network key
// and PAN identifier, and appends a CRC-16 over the frame:
//
//	+-----------+-------------------+-----------+
//	| nonce (4) | ciphertext (n)    | CRC-16 (2)|
//	+-----------+-------------------+-----------+
//
// The CRC is little-endian and covers the nonce and ciphertext.
package secure
