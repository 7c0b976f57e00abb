package config

// validConfigYAML is a small route table used across tests.
const validConfigYAML = `
apiVersion: linkrouter.io/v1
kind: RouteTable
metadata:
  name: student
spec:
  screenMatching: legacy
  fullscreenScreens: [ConferenceDetails]
  bottomSheetScreens: [CourseSettings]
  routes:
    - name: course-new
      path: /courses/new
      context: do_not_route
    - name: assignment-details
      path: /courses/:course_id/assignments/:assignment_id
      primary: AssignmentList
      secondary: AssignmentDetails
      type: detail
    - name: module-page
      path: /courses/:course_id/pages/:page_id
      queryParams: [module_item_id]
      secondary: ModuleItemSequence
    - name: settings
      secondary: CourseSettings
  server:
    listen: ":9090"
    rateLimit: {rps: 10, burst: 20}
    shutdownTimeout: 5s
`

// invalidConfigYAML fails validation.
const invalidConfigYAML = `
apiVersion: gateway.example.io/v1
kind: RouteTable
metadata:
  name: broken
spec:
  routes:
    - name: no-target
`
