package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"transitcat/internal/catalog"
)

// stopRow and busRow mirror the column layout of stops.csv/buses.csv.
// Field order doesn't matter — columns are matched to fields by the csv
// struct tag the way gtfs.ParseZip's loader matches GTFS columns.
type stopRow struct {
	Name      string  `csv:"name"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
	// DistancesTo is a "|"-separated list of "stop:meters" pairs, since a
	// flat CSV row has no native map column.
	DistancesTo string `csv:"distances_to"`
}

type busRow struct {
	Name        string `csv:"name"`
	Stops       string `csv:"stops"` // "|"-separated stop names, in route order
	IsRoundtrip bool   `csv:"is_roundtrip"`
}

// DecodeCSV reads a stops.csv/buses.csv pair into a batch of
// catalog.PostRequest, normalizing bus routes the same way DecodeJSON
// does. Either reader may be nil to ingest only stops or only buses.
func DecodeCSV(stops, buses io.Reader) ([]catalog.PostRequest, error) {
	var requests []catalog.PostRequest

	if stops != nil {
		rows, err := readCSV[stopRow](stops)
		if err != nil {
			return nil, fmt.Errorf("decode stops.csv: %w", err)
		}
		for _, row := range rows {
			distances, err := parseDistances(row.DistancesTo)
			if err != nil {
				return nil, fmt.Errorf("stop %q: %w", row.Name, err)
			}
			requests = append(requests, catalog.PostStopRequest{
				Stop:      row.Name,
				Coords:    catalog.Coordinates{Latitude: row.Latitude, Longitude: row.Longitude},
				Distances: distances,
			})
		}
	}

	if buses != nil {
		rows, err := readCSV[busRow](buses)
		if err != nil {
			return nil, fmt.Errorf("decode buses.csv: %w", err)
		}
		for _, row := range rows {
			stopNames := strings.Split(row.Stops, "|")
			if len(stopNames) < 2 {
				return nil, fmt.Errorf("bus %q needs at least two stops", row.Name)
			}
			requests = append(requests, catalog.PostBusRequest{
				Bus:   row.Name,
				Stops: NormalizeRoute(stopNames, row.IsRoundtrip),
			})
		}
	}

	return requests, nil
}

func parseDistances(field string) (map[string]int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}

	distances := make(map[string]int)
	for _, pair := range strings.Split(field, "|") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed distance pair %q", pair)
		}
		meters, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed distance value in %q: %w", pair, err)
		}
		distances[strings.TrimSpace(parts[0])] = meters
	}
	return distances, nil
}

// readCSV decodes rows into T by matching header columns to the "csv"
// struct tag, the way gtfs/parser.go's buildFieldMap does — generalized
// here to set typed (string/float64/int/bool) fields instead of only
// strings, since this format carries coordinates and flags natively.
func readCSV[T any](r io.Reader) ([]T, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	fieldMap := buildFieldMap[T](header)

	var results []T
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		item, err := decodeRecord[T](record, fieldMap)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, nil
}

type fieldMapping struct {
	csvIndex   int
	fieldIndex int
}

func buildFieldMap[T any](header []string) []fieldMapping {
	var t T
	typ := reflect.TypeOf(t)

	tagToField := make(map[string]int)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("csv"); tag != "" {
			tagToField[tag] = i
		}
	}

	var mappings []fieldMapping
	for csvIdx, colName := range header {
		colName = strings.TrimSpace(colName)
		if fieldIdx, ok := tagToField[colName]; ok {
			mappings = append(mappings, fieldMapping{csvIndex: csvIdx, fieldIndex: fieldIdx})
		}
	}
	return mappings
}

func decodeRecord[T any](record []string, fieldMap []fieldMapping) (T, error) {
	var t T
	v := reflect.ValueOf(&t).Elem()
	for _, fm := range fieldMap {
		if fm.csvIndex >= len(record) {
			continue
		}
		raw := record[fm.csvIndex]
		field := v.Field(fm.fieldIndex)
		if err := setField(field, raw); err != nil {
			return t, fmt.Errorf("column %d: %w", fm.csvIndex, err)
		}
	}
	return t, nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Float64, reflect.Float32:
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse float %q: %w", raw, err)
		}
		field.SetFloat(f)
	case reflect.Int, reflect.Int64:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse int %q: %w", raw, err)
		}
		field.SetInt(n)
	case reflect.Bool:
		if raw == "" {
			return nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool %q: %w", raw, err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
