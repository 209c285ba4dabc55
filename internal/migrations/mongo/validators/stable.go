package validators

import "go.mongodb.org/mongo-driver/bson"

var StableValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"title",
			"location",
			"rates",
			"status",
			"capacity",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"details": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"location": bson.M{
				"bsonType": "object",
				"required": []string{"address", "city"},
				"properties": bson.M{
					"address": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
					"city":    bson.M{"bsonType": "string", "minLength": 2, "maxLength": 50},
					"latitude": bson.M{
						"bsonType": "double", "minimum": -90, "maximum": 90,
					},
					"longitude": bson.M{
						"bsonType": "double", "minimum": -180, "maximum": 180,
					},
				},
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    bson.M{"bsonType": "string"},
			},

			"rates": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 3,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"amount", "unit"},
					"properties": bson.M{
						"amount": bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
						"unit":   bson.M{"bsonType": "string", "enum": []string{"day", "week", "month"}},
					},
				},
			},

			"services": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name"},
					"properties": bson.M{
						"name":          bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
						"price_per_day": bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
					},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"active",
					"inactive",
				},
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  500,
			},

			"rating": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  5,
			},

			"noof_rating_customers": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
