// Package cache owns the locally persisted authentication records: the
// cached user credential, the biometric opt-in answer and the pending
// password-change flag.
//
// Records are JSON blobs in the secure store under fixed keys:
//
//	user_key            {"user": "...", "password": "..."}
//	opt_into_face_auth  {"answer": "YES" | "NO"}
//	change_password     {"change_password": true | false}
//
// Reads never fail: a missing key, an unknown key or an undecodable blob all
// read as "absent". Writes are best effort and only logged on failure.
package cache
