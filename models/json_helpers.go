package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func ConvertToJSON(data interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(bytes), nil
}

// JSONToMap decodes a JSONB column into a map. A nil or empty column yields
// an empty map, never nil.
func JSONToMap(data datatypes.JSON) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if len(data) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}
