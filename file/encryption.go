package file

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
)

// Encryption summarizes the encryption parameters of a document,
// as defined by the standard security handler (7.6.3).
type Encryption struct {
	V, R int

	// key length, in bytes
	Length int

	// user permissions, as a bit field
	P int32

	O, U []byte

	EncryptMetadata bool
}

type cryptMethod uint8

const (
	cryptNone cryptMethod = iota // Identity
	cryptRC4
	cryptAES
)

// decryptor holds the encryption key of the document, once the
// password has been authenticated.
type decryptor struct {
	Encryption

	key []byte

	// methods used for streams and strings: they only differ
	// with V4 crypt filters
	stm, str cryptMethod
}

// 7.6.3.3: the padding applied to the passwords
var passwordPadding = [32]byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// setupEncryption reads the Encrypt entry of the trailer, if any,
// and authenticates the password given in the configuration, which
// may be the user or the owner password.
func (ctx *context) setupEncryption() error {
	if ctx.trailer.encrypt == nil {
		return nil
	}
	// note that the resolution happens before ctx.enc is set,
	// so the entries of the dictionary are not decrypted
	encO, err := ctx.resolve(ctx.trailer.encrypt)
	if err != nil {
		return err
	}
	encDict, ok := encO.(parser.Dict)
	if !ok {
		return fmt.Errorf("invalid Encrypt entry %v", encO)
	}

	if encDict["Filter"] != parser.Name("Standard") {
		return fmt.Errorf("unsupported security handler %v", encDict["Filter"])
	}

	var enc decryptor
	enc.V, _ = model.IsInt(encDict["V"])
	enc.R, _ = model.IsInt(encDict["R"])

	bits, ok := model.IsInt(encDict["Length"])
	if !ok {
		bits = 40
	}
	if bits%8 != 0 || bits < 40 || bits > 128 {
		return fmt.Errorf("invalid key length %d", bits)
	}
	enc.Length = bits / 8

	p, ok := model.IsInt(encDict["P"])
	if !ok {
		return errors.New("missing P entry in encryption dictionary")
	}
	enc.P = int32(p)

	o, _ := model.IsString(encDict["O"])
	u, _ := model.IsString(encDict["U"])
	if len(o) < 32 || len(u) < 32 {
		return errors.New("invalid O and U entries in encryption dictionary")
	}
	enc.O, enc.U = []byte(o)[0:32], []byte(u)[0:32]

	enc.EncryptMetadata = true
	if em, ok := encDict["EncryptMetadata"].(parser.Bool); ok {
		enc.EncryptMetadata = bool(em)
	}

	switch enc.V {
	case 1:
		enc.Length = 5
		enc.stm, enc.str = cryptRC4, cryptRC4
	case 2:
		enc.stm, enc.str = cryptRC4, cryptRC4
	case 4:
		if err := enc.setupCryptFilters(ctx, encDict); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported encryption version %d", enc.V)
	}

	// try the password as the user password first,
	// then as the owner password
	pwd := []byte(ctx.conf.Password)
	key := enc.encryptionKey(pwd, ctx.trailer.id[0])
	if !enc.authUserPassword(key, ctx.trailer.id[0]) {
		key = enc.encryptionKey(enc.userPasswordFromOwner(pwd), ctx.trailer.id[0])
		if !enc.authUserPassword(key, ctx.trailer.id[0]) {
			return errors.New("invalid password")
		}
	}
	enc.key = key
	ctx.enc = &enc
	return nil
}

// setupCryptFilters reads the V4 crypt filters (CF, StmF, StrF).
func (enc *decryptor) setupCryptFilters(ctx *context, encDict parser.Dict) error {
	cfO, _ := ctx.resolve(encDict["CF"])
	cf, _ := cfO.(parser.Dict)

	method := func(name parser.Name) (cryptMethod, error) {
		if name == "" || name == "Identity" {
			return cryptNone, nil
		}
		fiO, _ := ctx.resolve(cf[name])
		fi, ok := fiO.(parser.Dict)
		if !ok {
			return 0, fmt.Errorf("undefined crypt filter %s", name)
		}
		switch cfm := fi["CFM"]; cfm {
		case parser.Name("V2"):
			return cryptRC4, nil
		case parser.Name("AESV2"):
			return cryptAES, nil
		case parser.Name("None"), nil:
			return cryptNone, nil
		default:
			return 0, fmt.Errorf("unsupported crypt filter method %v", cfm)
		}
	}

	stmF, _ := encDict["StmF"].(parser.Name)
	strF, _ := encDict["StrF"].(parser.Name)
	var err error
	if enc.stm, err = method(stmF); err != nil {
		return err
	}
	enc.str, err = method(strF)
	return err
}

func padPassword(password []byte) []byte {
	if len(password) > 32 {
		password = password[0:32]
	}
	out := make([]byte, 32)
	copy(out, password)
	copy(out[len(password):], passwordPadding[:])
	return out
}

// encryptionKey derives the encryption key from a user password
// (7.6.3.3, algorithm 2).
func (enc *decryptor) encryptionKey(userPassword []byte, id0 string) []byte {
	h := md5.New()
	h.Write(padPassword(userPassword))
	h.Write(enc.O)
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], uint32(enc.P))
	h.Write(p[:])
	h.Write([]byte(id0))
	if enc.R >= 4 && !enc.EncryptMetadata {
		h.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	}
	key := h.Sum(nil)

	n := enc.Length
	if enc.R == 2 {
		n = 5
	}
	if enc.R >= 3 {
		for i := 0; i < 50; i++ {
			sum := md5.Sum(key[0:n])
			key = sum[:]
		}
	}
	return key[0:n]
}

// xor19 applies 19 rounds of RC4, the key being xored with the
// round number (used for the O and U entries when R >= 3).
func xor19(key, data []byte) {
	tmpKey := make([]byte, len(key))
	for i := byte(1); i <= 19; i++ {
		for j, k := range key {
			tmpKey[j] = k ^ i
		}
		c, _ := rc4.NewCipher(tmpKey)
		c.XORKeyStream(data, data)
	}
}

// computeU computes the U entry from the encryption key
// (7.6.3.4, algorithms 4 and 5).
func (enc *decryptor) computeU(key []byte, id0 string) []byte {
	out := make([]byte, 32)
	if enc.R == 2 {
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(out, passwordPadding[:])
		return out
	}
	h := md5.New()
	h.Write(passwordPadding[:])
	h.Write([]byte(id0))
	sum := h.Sum(nil)
	c, _ := rc4.NewCipher(key)
	c.XORKeyStream(sum, sum)
	xor19(key, sum)
	copy(out, sum) // the last 16 bytes are arbitrary
	return out
}

func (enc *decryptor) authUserPassword(key []byte, id0 string) bool {
	u := enc.computeU(key, id0)
	if enc.R >= 3 { // only the first 16 bytes are meaningful
		return bytes.Equal(u[0:16], enc.U[0:16])
	}
	return bytes.Equal(u, enc.U)
}

// userPasswordFromOwner decrypts the O entry with the given owner
// password, yielding the (padded) user password (7.6.3.4,
// algorithm 3 reversed).
func (enc *decryptor) userPasswordFromOwner(ownerPassword []byte) []byte {
	sum := md5.Sum(padPassword(ownerPassword))
	key := sum[:]
	if enc.R >= 3 {
		for i := 0; i < 50; i++ {
			sum = md5.Sum(key)
			key = sum[:]
		}
	}
	n := enc.Length
	if enc.R == 2 {
		n = 5
	}
	key = key[0:n]

	user := make([]byte, 32)
	copy(user, enc.O)
	if enc.R == 2 {
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(user, user)
	} else {
		// undo the 19 xored rounds, then the base round
		tmpKey := make([]byte, len(key))
		for i := 19; i >= 0; i-- {
			for j, k := range key {
				tmpKey[j] = k ^ byte(i)
			}
			c, _ := rc4.NewCipher(tmpKey)
			c.XORKeyStream(user, user)
		}
	}
	return user
}

// sAlT, added to the object key derivation for AES
var aesSalt = [4]byte{0x73, 0x41, 0x6C, 0x54}

// objectKey derives the key used for one object (7.6.2, algorithm 1).
func (enc *decryptor) objectKey(ref parser.IndirectRef, aesCrypt bool) []byte {
	n := len(enc.key)
	b := make([]byte, 0, n+9)
	b = append(b, enc.key...)
	b = append(b,
		byte(ref.ObjectNumber), byte(ref.ObjectNumber>>8), byte(ref.ObjectNumber>>16),
		byte(ref.GenerationNumber), byte(ref.GenerationNumber>>8))
	if aesCrypt {
		b = append(b, aesSalt[:]...)
	}
	sum := md5.Sum(b)
	size := n + 5
	if size > 16 {
		size = 16
	}
	return sum[0:size]
}

func decryptRC4(key, data []byte) []byte {
	c, _ := rc4.NewCipher(key)
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out
}

// decryptAES decrypts AES-CBC data: the initialization vector is
// stored in the first 16 bytes.
func decryptAES(key, data []byte) ([]byte, error) {
	cb, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data) < aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("invalid AES data length %d", len(data))
	}
	iv := data[0:aes.BlockSize]
	out := make([]byte, len(data)-aes.BlockSize)
	cipher.NewCBCDecrypter(cb, iv).CryptBlocks(out, data[aes.BlockSize:])
	// remove the padding (CBC mode, as in RFC 2898)
	if n := len(out); n > 0 {
		if pad := int(out[n-1]); pad <= 16 && pad <= n {
			out = out[0 : n-pad]
		}
	}
	return out, nil
}

func (enc *decryptor) decryptBytes(data []byte, ref parser.IndirectRef, method cryptMethod) ([]byte, error) {
	switch method {
	case cryptRC4:
		return decryptRC4(enc.objectKey(ref, false), data), nil
	case cryptAES:
		return decryptAES(enc.objectKey(ref, true), data)
	default: // Identity
		return data, nil
	}
}

// decryptObject decrypts the strings and the stream content of `o`,
// found in the object `ref`.
func (enc *decryptor) decryptObject(o parser.Object, ref parser.IndirectRef) (parser.Object, error) {
	var err error
	switch o := o.(type) {
	case parser.StringLiteral:
		b, err := enc.decryptBytes([]byte(o), ref, enc.str)
		return parser.StringLiteral(b), err
	case parser.HexLiteral:
		b, err := enc.decryptBytes([]byte(o), ref, enc.str)
		return parser.HexLiteral(b), err
	case parser.Array:
		for i, v := range o {
			if o[i], err = enc.decryptObject(v, ref); err != nil {
				return nil, err
			}
		}
		return o, nil
	case parser.Dict:
		for k, v := range o {
			if o[k], err = enc.decryptObject(v, ref); err != nil {
				return nil, err
			}
		}
		return o, nil
	case model.ObjStream:
		// cross reference streams are never encrypted, and the
		// metadata may be excluded
		if ty := o.Args["Type"]; ty == parser.Name("XRef") ||
			(ty == parser.Name("Metadata") && !enc.EncryptMetadata) {
			return o, nil
		}
		args, err := enc.decryptObject(o.Args, ref)
		if err != nil {
			return nil, err
		}
		o.Args = args.(parser.Dict)
		o.Content, err = enc.decryptBytes(o.Content, ref, enc.stm)
		return o, err
	default:
		return o, nil
	}
}
