// Package file builds upon a parser
// to read an existing PDF file, producing a
// tree of PDF objects.
// The entry point is the `Read` function: it locates the cross
// reference table (with a scan of the whole file as fallback
// for corrupted documents), loads the objects in memory, and
// decrypts the protected documents.
package file

import (
	"errors"
	"io"
	"os"

	"github.com/jferard/minimalpdfparser/model"
	"github.com/jferard/minimalpdfparser/parser"
	"github.com/pdfcpu/pdfcpu/pkg/log"
)

// The recovery logic for damaged files is adapted from pdfcpu

// XrefTable is a store of PDF objects, identified by their object number.
type XrefTable map[int]parser.Object

// PDFFile represents a parsed PDF file.
// It is mainly composed of a store of objects (model.Object), identified
// by their reference (model.ObjIndirectRef).
// It usually requires more processing to be really useful: see for
// instance the package 'extractor'.
type PDFFile struct {
	XrefTable

	// The PDF version the source is claiming to us as per its header.
	HeaderVersion string

	// AdditionalStreams (array of IndirectRef) is not described in the spec,
	// but may be found in the trailer: e.g., Oasis "Open Doc"
	AdditionalStreams parser.Array

	// Reference to the Catalog root dictionary
	Root parser.IndirectRef

	// Optional reference to the Info dictionary, containing metadata.
	Info *parser.IndirectRef

	// ID is found in the trailer, and used for encryption
	ID [2]string

	// Encryption found in the trailer. Optional.
	Encryption *Encryption
}

// ResolveObject use the xref table to resolve indirect references.
// Direct objects are returned as it is.
func (f PDFFile) ResolveObject(o parser.Object) parser.Object {
	ref, ok := o.(parser.IndirectRef)
	if !ok {
		return o // return the direct object as it is
	}

	if resolved, has := f.XrefTable[ref.ObjectNumber]; has {
		return resolved
	}

	// 7.3.10: An indirect reference to an undefined object shall not be
	// considered an error by a conforming reader;
	// it shall be treated as a reference to the null object.
	return model.ObjNull{}
}

type Configuration struct {
	// Either owner or user password.
	// We don't support changing permissions,
	// so both passwords act the same.
	Password string
}

func NewDefaultConfiguration() *Configuration {
	return &Configuration{}
}

// ReadFile is the same as Read, but takes a file name as input.
func ReadFile(file string, conf *Configuration) (PDFFile, error) {
	f, err := os.Open(file)
	if err != nil {
		return PDFFile{}, err
	}
	defer f.Close()

	return Read(f, conf)
}

// Read process a PDF file, reading the xref table and loading
// objects in memory.
func Read(rs io.ReadSeeker, conf *Configuration) (PDFFile, error) {
	ctx, err := processFile(rs, conf)
	if err != nil {
		return PDFFile{}, err
	}

	err = ctx.processAllObjects()
	if err != nil {
		return PDFFile{}, err
	}

	if ctx.trailer.root == nil {
		// a file using only xref streams and damaged offsets has
		// no readable trailer: look into the objects themselves
		ctx.recoverTrailer()
	}
	if ctx.trailer.root == nil {
		return PDFFile{}, errors.New("missing Root entry")
	}

	out := PDFFile{
		HeaderVersion:     ctx.headerVersion,
		Root:              *ctx.trailer.root,
		AdditionalStreams: ctx.trailer.additionalStreams,
		XrefTable:         make(XrefTable, len(ctx.xrefTable.objects)),
		Info:              ctx.trailer.info,
		ID:                ctx.trailer.id,
	}

	// only the most recent generation of each object number is
	// visible; a number whose last definition is free resolves
	// to null
	for objNumber, gen := range ctx.xrefTable.generations {
		ref := parser.IndirectRef{ObjectNumber: objNumber, GenerationNumber: gen}
		if entry := ctx.xrefTable.objects[ref]; entry != nil && !entry.free {
			out.XrefTable[objNumber] = entry.object
		}
	}

	if ctx.enc != nil {
		out.Encryption = &ctx.enc.Encryption
	}

	return out, nil
}

func processFile(rs io.ReadSeeker, conf *Configuration) (*context, error) {
	ctx, err := newContext(rs, conf)
	if err != nil {
		return nil, err
	}

	var headerOffset int64
	ctx.headerVersion, headerOffset, err = headerVersion(ctx.rs, "%PDF-")
	if err != nil {
		return nil, err
	}
	if headerOffset != 0 {
		log.Read.Printf("%d garbage bytes before the header: rebasing the offsets", headerOffset)
		ctx.rs = offsetReader{rs: ctx.rs, base: headerOffset}
		ctx.fileSize -= headerOffset
	}

	o, err := ctx.offsetLastXRefSection(0)
	if err != nil {
		// no startxref at all: scan the file for objects
		err = ctx.bypassXrefSection()
		if err != nil {
			return nil, err
		}
	} else if err = ctx.buildXRefTableStartingAt(o); err != nil {
		// the sections are unreadable: scan the file for objects
		log.Read.Printf("invalid xref section (%s): scanning the file", err)
		ctx.xrefTable = newXRefTable()
		if err = ctx.bypassXrefSection(); err != nil {
			return nil, err
		}
	}

	err = ctx.setupEncryption()
	if err != nil {
		return nil, err
	}

	return ctx, nil
}
