// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package moguchat

import "unsafe"

// strToBytes views the bytes of str without copying. The result must not be
// mutated.
func strToBytes(str string) []byte {
	return unsafe.Slice(unsafe.StringData(str), len(str))
}
