package validators

import "go.mongodb.org/mongo-driver/bson"

var TrainerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"title",
			"location",
			"weekly_schedule",
			"status",
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

			"hourly_price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"experience": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"weekly_schedule": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day", "start", "end"},
					"properties": bson.M{
						"day": bson.M{
							"bsonType": "string",
							"enum": []string{
								"Sunday", "Monday", "Tuesday", "Wednesday",
								"Thursday", "Friday", "Saturday",
							},
						},
						"start": bson.M{"bsonType": "string"},
						"end":   bson.M{"bsonType": "string"},
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
