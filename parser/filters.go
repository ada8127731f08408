package parser

import (
	"errors"
	"fmt"

	"github.com/jferard/minimalpdfparser/model"
)

var errFiltersCorrupted = errors.New("corrupted filter expression")

// ParseDirectFilters is the same as ParseFilters, but for direct objects.
// It is the case in image inline parameters and xRefStream dicts.
func ParseDirectFilters(filters, decodeParams Object) (model.Filters, error) {
	return ParseFilters(filters, decodeParams, func(o Object) (Object, error) { return o, nil })
}

// ParseFilters process the given filters and their (optional) parameters.
// `resolver` is called to resolve the potential indirect objects.
// An empty list may be returned if the filters are nil.
func ParseFilters(filters, decodeParams Object, resolver func(Object) (Object, error)) (model.Filters, error) {
	var err error
	filters, err = resolver(filters)
	if err != nil {
		return nil, err
	}
	switch filters.(type) {
	case nil, model.ObjNull:
		return nil, nil
	}

	if filterName, isName := filters.(Name); isName {
		filters = Array{filterName}
	}
	ar, ok := filters.(Array)
	if !ok {
		return nil, errFiltersCorrupted
	}
	var out model.Filters
	for _, name := range ar {
		name, err = resolver(name)
		if err != nil {
			return nil, err
		}

		if filterName, isName := name.(Name); isName {
			out = append(out, model.Filter{Name: filterName})
		} else {
			return nil, errFiltersCorrupted
		}
	}

	decodeParams, err = resolver(decodeParams)
	if err != nil {
		return nil, err
	}

	switch decodeParams := decodeParams.(type) {
	case Array: // one dict param per filter
		if len(decodeParams) != len(out) {
			return nil, fmt.Errorf("unexpected length for DecodeParms array: %d", len(decodeParams))
		}
		for i, parms := range decodeParams {
			parms, err = resolver(parms)
			if err != nil {
				return nil, err
			}
			out[i].DecodeParms = processOneDecodeParms(parms)
		}
	case Dict: // one filter and one dict param
		if len(out) != 1 {
			return nil, fmt.Errorf("DecodeParms as dict only supported for one filter, got %d", len(out))
		}
		out[0].DecodeParms = processOneDecodeParms(decodeParams)
	case nil, model.ObjNull: // OK
	default:
		return nil, errFiltersCorrupted
	}

	return out, nil
}

func processOneDecodeParms(parms Object) map[string]int {
	parmsDict, _ := parms.(Dict)
	parmsModel := make(map[string]int)
	for paramName, paramVal := range parmsDict {
		var intVal int
		switch val := paramVal.(type) {
		case Bool:
			if val {
				intVal = 1
			} else {
				intVal = 0
			}
		case Integer:
			intVal = int(val)
		case Float:
			intVal = int(val)
		default:
			continue
		}
		parmsModel[string(paramName)] = intVal
	}
	return parmsModel
}
