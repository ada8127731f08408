package file

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"testing"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
)

// forgeO computes the O entry from the two passwords
// (7.6.3.4, algorithm 3).
func forgeO(ownerPassword, userPassword string, r, n int) []byte {
	sum := md5.Sum(padPassword([]byte(ownerPassword)))
	key := sum[:]
	if r >= 3 {
		for i := 0; i < 50; i++ {
			sum = md5.Sum(key)
			key = sum[:]
		}
	}
	key = key[0:n]

	o := padPassword([]byte(userPassword))
	c, _ := rc4.NewCipher(key)
	c.XORKeyStream(o, o)
	if r >= 3 {
		xor19(key, o)
	}
	return o
}

// forgeDecryptor builds a consistent set of encryption parameters.
func forgeDecryptor(ownerPassword, userPassword, id0 string, r, n int) decryptor {
	enc := decryptor{Encryption: Encryption{
		R: r, Length: n, P: -44,
		EncryptMetadata: true,
	}}
	enc.O = forgeO(ownerPassword, userPassword, r, n)
	key := enc.encryptionKey([]byte(userPassword), id0)
	enc.U = enc.computeU(key, id0)
	return enc
}

func TestPasswords(t *testing.T) {
	for _, tc := range []struct {
		r, n int
	}{
		{2, 5},
		{3, 16},
		{4, 16},
	} {
		const id0 = "\x12\x55\xF3\x40 a file identifier"
		enc := forgeDecryptor("owner secret", "user secret", id0, tc.r, tc.n)

		// the user password authenticates
		key := enc.encryptionKey([]byte("user secret"), id0)
		if !enc.authUserPassword(key, id0) {
			t.Errorf("R%d: user password rejected", tc.r)
		}

		// the owner password yields the (padded) user password
		user := enc.userPasswordFromOwner([]byte("owner secret"))
		if !bytes.Equal(user, padPassword([]byte("user secret"))) {
			t.Errorf("R%d: wrong user password recovered from the owner one", tc.r)
		}
		key2 := enc.encryptionKey(user, id0)
		if !bytes.Equal(key, key2) || !enc.authUserPassword(key2, id0) {
			t.Errorf("R%d: owner password rejected", tc.r)
		}

		// a wrong password does not
		key = enc.encryptionKey([]byte("let me in"), id0)
		if enc.authUserPassword(key, id0) {
			t.Errorf("R%d: wrong password accepted", tc.r)
		}
	}
}

func TestObjectKey(t *testing.T) {
	enc := decryptor{key: make([]byte, 5)}
	ref := parser.IndirectRef{ObjectNumber: 12, GenerationNumber: 1}
	if got := enc.objectKey(ref, false); len(got) != 10 {
		t.Errorf("expected a 10 bytes key, got %d", len(got))
	}
	// the key size is capped to 16 bytes
	enc.key = make([]byte, 16)
	if got := enc.objectKey(ref, true); len(got) != 16 {
		t.Errorf("expected a 16 bytes key, got %d", len(got))
	}
	// the AES salt changes the key
	if bytes.Equal(enc.objectKey(ref, true), enc.objectKey(ref, false)) {
		t.Error("expected different keys with and without the salt")
	}
}

func TestDecryptAES(t *testing.T) {
	key := make([]byte, 16)
	_, _ = rand.Read(key)
	plain := []byte("a short message")

	// pad and encrypt, prepending the IV
	padLength := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append([]byte{}, plain...)
	for i := 0; i < padLength; i++ {
		padded = append(padded, byte(padLength))
	}
	data := make([]byte, aes.BlockSize+len(padded))
	_, _ = rand.Read(data[:aes.BlockSize])
	cb, _ := aes.NewCipher(key)
	cipher.NewCBCEncrypter(cb, data[:aes.BlockSize]).CryptBlocks(data[aes.BlockSize:], padded)

	got, err := decryptAES(key, data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("expected %q, got %q", plain, got)
	}

	if _, err = decryptAES(key, data[0:17]); err == nil {
		t.Error("expected error on truncated data")
	}
}

func TestDecryptObjectSkipsXRef(t *testing.T) {
	enc := decryptor{key: make([]byte, 5), stm: cryptRC4, str: cryptRC4}
	ref := parser.IndirectRef{ObjectNumber: 4}

	stream := model.ObjStream{
		Args:    parser.Dict{"Type": parser.Name("XRef")},
		Content: []byte{1, 2, 3},
	}
	got, err := enc.decryptObject(stream, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.(model.ObjStream).Content, []byte{1, 2, 3}) {
		t.Error("cross reference streams must not be decrypted")
	}

	// other streams are
	stream.Args["Type"] = parser.Name("ObjStm")
	got, err = enc.decryptObject(stream, ref)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(got.(model.ObjStream).Content, []byte{1, 2, 3}) {
		t.Error("expected a decrypted content")
	}
}
